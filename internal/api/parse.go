package api

import (
	"encoding/json"
	"net/http"
	"time"
)

// handleParse runs the parser without persisting anything. Useful for
// previewing what a message would turn into.
func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, 400, "invalid JSON: "+err.Error())
		return
	}
	if req.Message == "" {
		writeError(w, 400, "message is required")
		return
	}
	writeJSON(w, 200, s.parser.Parse(req.Message, time.Now()))
}
