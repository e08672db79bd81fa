package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"remindful/internal/api"
	"remindful/internal/db"
	"remindful/pkg/activity"
	"remindful/pkg/parse"
	"remindful/pkg/priority"
	"remindful/pkg/recur"
	"remindful/pkg/reminder"
	"remindful/pkg/user"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := db.Connect(ctx)
	if err != nil {
		log.Fatalf("connect: %v", err)
	}
	defer pool.Close()

	reminders := reminder.NewPgStore(pool)
	users := user.NewPgStore(pool)
	activityLog := activity.NewBus(activity.NewPgStore(pool))

	// Ensure tables exist
	if err := reminders.EnsureTable(ctx); err != nil {
		log.Fatalf("ensure reminders table: %v", err)
	}
	if err := users.EnsureTable(ctx); err != nil {
		log.Fatalf("ensure users table: %v", err)
	}
	if err := activityLog.EnsureTable(ctx); err != nil {
		log.Fatalf("ensure activity table: %v", err)
	}

	parser := parse.NewParser()
	priorities := priority.NewService(reminders, activityLog, envDuration("PRIORITY_RECALC_INTERVAL", 30*time.Minute))
	materializer := recur.NewService(reminders, activityLog, envDuration("RECUR_SWEEP_INTERVAL", time.Hour))

	go priorities.Run(ctx)
	go materializer.Run(ctx)

	server := api.New(reminders, users, activityLog, parser, priorities)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	httpServer := &http.Server{Addr: ":" + port, Handler: server}

	// Signal handling: stop the background tickers, then drain HTTP.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
		sig := <-sigCh
		log.Printf("remindful: received %s, shutting down", sig)
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)
	}()

	log.Printf("remindful listening on :%s", port)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("listen: %v", err)
	}
}

func envDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Printf("invalid %s %q, using %s", key, v, defaultVal)
		return defaultVal
	}
	return d
}
