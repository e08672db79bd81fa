package api

import (
	"encoding/json"
	"net/http"
)

func (s *Server) handleUserList(w http.ResponseWriter, r *http.Request) {
	users, err := s.users.List(r.Context())
	if err != nil {
		writeError(w, 500, err.Error())
		return
	}
	writeJSON(w, 200, users)
}

func (s *Server) handleUserRegister(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name  string `json:"name"`
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, 400, "invalid JSON: "+err.Error())
		return
	}
	if req.Name == "" {
		writeError(w, 400, "name is required")
		return
	}
	u, err := s.users.Register(r.Context(), req.Name, req.Email)
	if err != nil {
		writeError(w, 500, err.Error())
		return
	}
	writeJSON(w, 201, u)
}
