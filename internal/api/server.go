package api

import (
	"encoding/json"
	"log"
	"net/http"

	"remindful/pkg/activity"
	"remindful/pkg/parse"
	"remindful/pkg/priority"
	"remindful/pkg/reminder"
	"remindful/pkg/user"
)

// Server is the HTTP API server.
type Server struct {
	reminders reminder.Store
	users     user.Store
	activity  activity.Store
	parser    *parse.Parser
	tracker   *priority.Service
	mux       *http.ServeMux
}

// New creates a new Server.
func New(reminders reminder.Store, users user.Store, act activity.Store, parser *parse.Parser, tracker *priority.Service) *Server {
	s := &Server{
		reminders: reminders,
		users:     users,
		activity:  act,
		parser:    parser,
		tracker:   tracker,
		mux:       http.NewServeMux(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) routes() {
	// Parsing
	s.mux.HandleFunc("POST /api/parse", s.handleParse)

	// Reminders
	s.mux.HandleFunc("POST /api/reminders/process", s.handleReminderProcess)
	s.mux.HandleFunc("GET /api/reminders", s.handleReminderList)
	s.mux.HandleFunc("GET /api/reminders/inbox", s.handleReminderInbox)
	s.mux.HandleFunc("GET /api/reminders/stats", s.handleReminderStats)
	s.mux.HandleFunc("GET /api/reminders/{id}", s.handleReminderGet)
	s.mux.HandleFunc("PATCH /api/reminders/{id}/complete", s.handleReminderComplete)
	s.mux.HandleFunc("DELETE /api/reminders/{id}", s.handleReminderDelete)
	s.mux.HandleFunc("POST /api/reminders/{id}/track/{action}", s.handleReminderTrack)

	// Users
	s.mux.HandleFunc("GET /api/users", s.handleUserList)
	s.mux.HandleFunc("POST /api/users", s.handleUserRegister)

	// Activity
	s.mux.HandleFunc("GET /api/activity", s.handleActivityList)
	s.mux.HandleFunc("GET /api/activity/stream", s.handleActivityStream)

	// System
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("GET /api/status", s.handleStatus)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, 200, map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	reminderCount, _ := s.reminders.Count(r.Context())
	activityCount, _ := s.activity.Count(r.Context())
	writeJSON(w, 200, map[string]any{
		"reminders": reminderCount,
		"activity":  activityCount,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("write json: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
