package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"remindful/pkg/priority"
	"remindful/pkg/reminder"
)

// handleReminderProcess parses a natural-language message and, when the
// parse succeeds, persists the resulting reminder (recurring template or
// one-shot) with its initial smart priority. An unparseable message is not
// an error: the parse result carries a clarifying response for the user.
func (s *Server) handleReminderProcess(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID  string `json:"user_id"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, 400, "invalid JSON: "+err.Error())
		return
	}
	if req.UserID == "" {
		writeError(w, 400, "user_id is required")
		return
	}
	if req.Message == "" {
		writeError(w, 400, "message is required")
		return
	}

	now := time.Now()
	result := s.parser.Parse(req.Message, now)
	if !result.Success || result.DueAt == nil {
		writeJSON(w, 200, map[string]any{"result": result})
		return
	}

	rem := &reminder.Reminder{
		UserID:          req.UserID,
		Task:            result.Task,
		DueAt:           *result.DueAt,
		OriginalMessage: req.Message,
		Category:        result.Category,
		Tags:            result.Tags,
		Priority:        result.Priority,
		Recurrence:      result.Recurrence,
	}
	priority.Score(rem, now)

	created, err := s.reminders.Create(r.Context(), rem)
	if err != nil {
		writeError(w, 500, err.Error())
		return
	}

	s.logActivity(r, "reminder.created", created.ID, created.UserID, map[string]any{
		"task":       created.Task,
		"recurring":  created.Recurrence.IsRecurring,
		"confidence": result.Confidence,
	})

	writeJSON(w, 201, map[string]any{"result": result, "reminder": created})
}

func (s *Server) handleReminderList(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		writeError(w, 400, "user_id is required")
		return
	}

	f := reminder.ListFilter{
		UserID:   userID,
		Category: reminder.Category(r.URL.Query().Get("category")),
		Priority: reminder.Priority(r.URL.Query().Get("priority")),
		Sort:     r.URL.Query().Get("sort"),
		Limit:    queryInt(r, "limit", 50),
	}
	if v := r.URL.Query().Get("completed"); v != "" {
		completed, err := strconv.ParseBool(v)
		if err != nil {
			writeError(w, 400, "completed must be a boolean")
			return
		}
		f.Completed = &completed
	}

	reminders, err := s.reminders.List(r.Context(), f)
	if err != nil {
		writeError(w, 500, err.Error())
		return
	}
	writeJSON(w, 200, reminders)
}

// handleReminderInbox returns the user's open future reminders ranked by
// smart priority score, highest first.
func (s *Server) handleReminderInbox(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		writeError(w, 400, "user_id is required")
		return
	}

	now := time.Now()
	completed := false
	f := reminder.ListFilter{
		UserID:    userID,
		Category:  reminder.Category(r.URL.Query().Get("category")),
		Priority:  reminder.Priority(r.URL.Query().Get("priority")),
		Completed: &completed,
		DueAfter:  &now,
		Sort:      "smart",
		Limit:     queryInt(r, "limit", 20),
	}

	reminders, err := s.reminders.List(r.Context(), f)
	if err != nil {
		writeError(w, 500, err.Error())
		return
	}
	writeJSON(w, 200, map[string]any{
		"reminders": reminders,
		"count":     len(reminders),
	})
}

func (s *Server) handleReminderStats(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		writeError(w, 400, "user_id is required")
		return
	}
	stats, err := s.reminders.Stats(r.Context(), userID, time.Now())
	if err != nil {
		writeError(w, 500, err.Error())
		return
	}
	writeJSON(w, 200, stats)
}

func (s *Server) handleReminderGet(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	rem, err := s.reminders.Get(r.Context(), id)
	if err != nil {
		writeError(w, 404, err.Error())
		return
	}
	writeJSON(w, 200, rem)
}

func (s *Server) handleReminderComplete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	completed := true
	var req struct {
		Completed *bool `json:"completed"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err == nil && req.Completed != nil {
		completed = *req.Completed
	}

	rem, err := s.reminders.SetCompleted(r.Context(), id, completed)
	if err != nil {
		writeError(w, 500, err.Error())
		return
	}
	if completed {
		s.logActivity(r, "reminder.completed", rem.ID, rem.UserID, nil)
	}
	writeJSON(w, 200, rem)
}

func (s *Server) handleReminderDelete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.reminders.Delete(r.Context(), id); err != nil {
		writeError(w, 500, err.Error())
		return
	}
	writeJSON(w, 200, map[string]string{"status": "deleted"})
}

// handleReminderTrack records a user interaction (view, snooze, edit,
// complete). Rescoring happens on the next periodic recompute tick.
func (s *Server) handleReminderTrack(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	action := reminder.InteractionKind(r.PathValue("action"))

	var req struct {
		CompletionMinutes int `json:"completion_minutes"`
	}
	// Body is optional; only the complete action carries a payload.
	json.NewDecoder(r.Body).Decode(&req)

	if err := s.tracker.TrackInteraction(r.Context(), id, action, req.CompletionMinutes); err != nil {
		writeError(w, 400, err.Error())
		return
	}
	writeJSON(w, 200, map[string]string{"status": "tracked"})
}

func (s *Server) logActivity(r *http.Request, entryType, reminderID, userID string, detail map[string]any) {
	if s.activity == nil {
		return
	}
	if _, err := s.activity.Append(r.Context(), entryType, reminderID, userID, detail); err != nil {
		// Activity logging is best-effort; the primary write already succeeded.
		return
	}
}

func queryInt(r *http.Request, key string, defaultVal int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return n
}
