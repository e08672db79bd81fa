package api

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"
)

func (s *Server) handleActivityList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	limit := queryInt(r, "limit", 50)

	if id := r.URL.Query().Get("reminder_id"); id != "" {
		entries, err := s.activity.ByReminder(ctx, id, limit)
		if err != nil {
			writeError(w, 500, err.Error())
			return
		}
		writeJSON(w, 200, entries)
		return
	}
	if id := r.URL.Query().Get("user_id"); id != "" {
		entries, err := s.activity.ByUser(ctx, id, limit)
		if err != nil {
			writeError(w, 500, err.Error())
			return
		}
		writeJSON(w, 200, entries)
		return
	}

	entries, err := s.activity.Recent(ctx, limit)
	if err != nil {
		writeError(w, 500, err.Error())
		return
	}
	writeJSON(w, 200, entries)
}

// handleActivityStream serves a live SSE feed of activity entries, polling
// the store for anything newer than the last entry sent.
func (s *Server) handleActivityStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, 500, "streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	flusher.Flush()

	ctx := r.Context()
	lastID := r.URL.Query().Get("after")

	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if lastID == "" {
				recent, err := s.activity.Recent(ctx, 1)
				if err != nil {
					log.Printf("SSE poll: %v", err)
					continue
				}
				if len(recent) > 0 {
					lastID = recent[0].ID
				}
				continue
			}
			entries, err := s.activity.Since(ctx, lastID, 50)
			if err != nil {
				log.Printf("SSE poll: %v", err)
				continue
			}
			for i := range entries {
				fmt.Fprintf(w, "data: ")
				writeJSONRaw(w, entries[i])
				fmt.Fprintf(w, "\n\n")
				flusher.Flush()
				lastID = entries[i].ID
			}
		}
	}
}

func writeJSONRaw(w http.ResponseWriter, v any) {
	enc := json.NewEncoder(w)
	enc.Encode(v)
}
