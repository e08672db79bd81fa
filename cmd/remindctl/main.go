package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"remindful/internal/db"
	"remindful/pkg/activity"
	"remindful/pkg/parse"
	"remindful/pkg/priority"
	"remindful/pkg/reminder"
	"remindful/pkg/user"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	// parse is purely local; everything else needs the database.
	if os.Args[1] == "parse" {
		handleParse(os.Args[2:])
		return
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx)
	if err != nil {
		fatal("connect: %v", err)
	}
	defer pool.Close()

	reminders := reminder.NewPgStore(pool)
	users := user.NewPgStore(pool)
	activityLog := activity.NewPgStore(pool)

	switch os.Args[1] {
	case "add":
		handleAdd(ctx, reminders, users, os.Args[2:])
	case "inbox":
		handleInbox(ctx, reminders, os.Args[2:])
	case "list":
		handleList(ctx, reminders, os.Args[2:])
	case "get":
		handleGet(ctx, reminders, os.Args[2:])
	case "complete":
		handleComplete(ctx, reminders, os.Args[2:])
	case "delete":
		handleDelete(ctx, reminders, os.Args[2:])
	case "track":
		handleTrack(ctx, reminders, activityLog, os.Args[2:])
	case "stats":
		handleStats(ctx, reminders, os.Args[2:])
	case "user":
		handleUser(ctx, users, os.Args[2:])
	case "activity":
		handleActivity(ctx, activityLog, os.Args[2:])
	case "status":
		handleStatus(ctx, reminders, activityLog)
	case "init":
		handleInit(ctx, reminders, users, activityLog)
	default:
		usage()
		os.Exit(1)
	}
}

func handleParse(args []string) {
	if len(args) == 0 {
		fatal("Usage: remindctl parse \"<message>\"")
	}
	p := parse.NewParser()
	printJSON(p.Parse(strings.Join(args, " "), time.Now()))
}

func handleAdd(ctx context.Context, reminders reminder.Store, users user.Store, args []string) {
	if len(args) == 0 {
		fatal("Usage: remindctl add \"<message>\" [--user=<name>]")
	}
	message := args[0]
	flags := parseFlags(args[1:])

	name := flags["user"]
	if name == "" {
		name = "default"
	}
	u, err := users.Register(ctx, name, "")
	if err != nil {
		fatal("register user: %v", err)
	}

	now := time.Now()
	p := parse.NewParser()
	result := p.Parse(message, now)
	if !result.Success || result.DueAt == nil {
		printJSON(result)
		return
	}

	rem := &reminder.Reminder{
		UserID:          u.ID,
		Task:            result.Task,
		DueAt:           *result.DueAt,
		OriginalMessage: message,
		Category:        result.Category,
		Tags:            result.Tags,
		Priority:        result.Priority,
		Recurrence:      result.Recurrence,
	}
	priority.Score(rem, now)

	created, err := reminders.Create(ctx, rem)
	if err != nil {
		fatal("create reminder: %v", err)
	}
	fmt.Println(result.Response)
	printJSON(created)
}

func handleInbox(ctx context.Context, store reminder.Store, args []string) {
	flags := parseFlags(args)
	now := time.Now()
	completed := false
	f := reminder.ListFilter{
		UserID:    flags["user-id"],
		Completed: &completed,
		DueAfter:  &now,
		Sort:      "smart",
		Limit:     intFlag(flags, "limit", 20),
	}
	if f.UserID == "" {
		fatal("--user-id is required")
	}
	reminders, err := store.List(ctx, f)
	if err != nil {
		fatal("inbox: %v", err)
	}
	if flags["format"] == "short" {
		printShortReminders(reminders)
	} else {
		printJSON(reminders)
	}
}

func handleList(ctx context.Context, store reminder.Store, args []string) {
	flags := parseFlags(args)
	f := reminder.ListFilter{
		UserID:   flags["user-id"],
		Category: reminder.Category(flags["category"]),
		Priority: reminder.Priority(flags["priority"]),
		Sort:     flags["sort"],
		Limit:    intFlag(flags, "limit", 20),
	}
	if f.UserID == "" {
		fatal("--user-id is required")
	}
	if v, ok := flags["completed"]; ok && v != "" {
		completed := v == "true"
		f.Completed = &completed
	}
	reminders, err := store.List(ctx, f)
	if err != nil {
		fatal("list reminders: %v", err)
	}
	if flags["format"] == "short" {
		printShortReminders(reminders)
	} else {
		printJSON(reminders)
	}
}

func handleGet(ctx context.Context, store reminder.Store, args []string) {
	if len(args) < 1 {
		fatal("Usage: remindctl get <id>")
	}
	r, err := store.Get(ctx, args[0])
	if err != nil {
		fatal("get reminder: %v", err)
	}
	printJSON(r)
}

func handleComplete(ctx context.Context, store reminder.Store, args []string) {
	if len(args) < 1 {
		fatal("Usage: remindctl complete <id> [--undo]")
	}
	flags := parseFlags(args[1:])
	_, undo := flags["undo"]
	r, err := store.SetCompleted(ctx, args[0], !undo)
	if err != nil {
		fatal("complete reminder: %v", err)
	}
	printJSON(r)
}

func handleDelete(ctx context.Context, store reminder.Store, args []string) {
	if len(args) < 1 {
		fatal("Usage: remindctl delete <id>")
	}
	if err := store.Delete(ctx, args[0]); err != nil {
		fatal("delete reminder: %v", err)
	}
	fmt.Println(`{"status":"deleted"}`)
}

func handleTrack(ctx context.Context, store reminder.Store, activityLog activity.Store, args []string) {
	if len(args) < 2 {
		fatal("Usage: remindctl track <id> <view|snooze|edit|complete> [--minutes=N]")
	}
	flags := parseFlags(args[2:])
	svc := priority.NewService(store, activityLog, 0)
	kind := reminder.InteractionKind(args[1])
	if err := svc.TrackInteraction(ctx, args[0], kind, intFlag(flags, "minutes", 0)); err != nil {
		fatal("track: %v", err)
	}
	fmt.Println(`{"status":"tracked"}`)
}

func handleStats(ctx context.Context, store reminder.Store, args []string) {
	flags := parseFlags(args)
	userID := flags["user-id"]
	if userID == "" {
		fatal("--user-id is required")
	}
	stats, err := store.Stats(ctx, userID, time.Now())
	if err != nil {
		fatal("stats: %v", err)
	}
	printJSON(stats)
}

func handleUser(ctx context.Context, store user.Store, args []string) {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "Usage: remindctl user <list|register|get>")
		os.Exit(1)
	}
	switch args[0] {
	case "list":
		users, err := store.List(ctx)
		if err != nil {
			fatal("list users: %v", err)
		}
		printJSON(users)
	case "register":
		flags := parseFlags(args[1:])
		name := flags["name"]
		if name == "" {
			fatal("--name is required")
		}
		u, err := store.Register(ctx, name, flags["email"])
		if err != nil {
			fatal("register user: %v", err)
		}
		printJSON(u)
	case "get":
		if len(args) < 2 {
			fatal("Usage: remindctl user get <id>")
		}
		u, err := store.Get(ctx, args[1])
		if err != nil {
			fatal("get user: %v", err)
		}
		printJSON(u)
	default:
		fatal("unknown user command: %s", args[0])
	}
}

func handleActivity(ctx context.Context, store activity.Store, args []string) {
	flags := parseFlags(args)
	limit := intFlag(flags, "limit", 20)

	var entries []activity.Entry
	var err error
	if id := flags["reminder-id"]; id != "" {
		entries, err = store.ByReminder(ctx, id, limit)
	} else if id := flags["user-id"]; id != "" {
		entries, err = store.ByUser(ctx, id, limit)
	} else {
		entries, err = store.Recent(ctx, limit)
	}
	if err != nil {
		fatal("activity: %v", err)
	}
	printJSON(entries)
}

func handleStatus(ctx context.Context, reminders reminder.Store, activityLog activity.Store) {
	reminderCount, _ := reminders.Count(ctx)
	activityCount, _ := activityLog.Count(ctx)
	printJSON(map[string]any{
		"reminders": reminderCount,
		"activity":  activityCount,
	})
}

func handleInit(ctx context.Context, reminders reminder.Store, users user.Store, activityLog activity.Store) {
	if err := reminders.EnsureTable(ctx); err != nil {
		fatal("ensure reminders table: %v", err)
	}
	if err := users.EnsureTable(ctx); err != nil {
		fatal("ensure users table: %v", err)
	}
	if err := activityLog.EnsureTable(ctx); err != nil {
		fatal("ensure activity table: %v", err)
	}
	fmt.Println(`{"status":"ok","message":"all tables initialized"}`)
}

// parseFlags parses --key=value and --flag style args into a map.
func parseFlags(args []string) map[string]string {
	flags := make(map[string]string)
	for _, arg := range args {
		if !strings.HasPrefix(arg, "--") {
			continue
		}
		arg = strings.TrimPrefix(arg, "--")
		if idx := strings.Index(arg, "="); idx >= 0 {
			flags[arg[:idx]] = arg[idx+1:]
		} else {
			flags[arg] = ""
		}
	}
	return flags
}

func intFlag(flags map[string]string, key string, defaultVal int) int {
	if v, ok := flags[key]; ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultVal
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fatal("encode JSON: %v", err)
	}
}

func truncStr(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}

func printShortReminders(reminders []reminder.Reminder) {
	for _, r := range reminders {
		id := truncStr(r.ID, 8)
		due := r.DueAt.Format("Jan 2 15:04")
		fmt.Printf("%-8s  %3d  %-12s  %s\n", id, r.SmartPriority.Score, due, truncStr(r.Task, 60))
	}
}

func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "remindctl: "+format+"\n", args...)
	os.Exit(1)
}

func usage() {
	fmt.Fprintln(os.Stderr, `Usage: remindctl <command>

Commands:
  parse      Parse a message locally without persisting
  add        Parse a message and create the reminder
  inbox      Smart-sorted open reminders for a user
  list       List reminders (filters: --category, --priority, --completed, --sort)
  get        Show one reminder
  complete   Mark a reminder completed (--undo to revert)
  delete     Delete a reminder
  track      Record a view/snooze/edit/complete interaction
  stats      Reminder counts for a user
  user       User operations (list, register, get)
  activity   Show the activity log
  status     Show system summary
  init       Initialize database tables`)
}
