package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"meal-planner/internal/planner"
)

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := s.app.Settings(r.Context(), getUserID(r.Context()))
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, settings)
}

func (s *Server) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req planner.Settings
	if err := s.decode(r, &req); err != nil {
		s.handleError(w, r, err)
		return
	}
	settings, err := s.app.UpdateSettings(r.Context(), getUserID(r.Context()), req)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, settings)
}

func (s *Server) handleToggleNoted(w http.ResponseWriter, r *http.Request) {
	settings, err := s.app.ToggleNoted(r.Context(), getUserID(r.Context()), chi.URLParam(r, "recipeID"))
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, settings)
}

func (s *Server) handleToggleFavorite(w http.ResponseWriter, r *http.Request) {
	settings, err := s.app.ToggleFavorite(r.Context(), getUserID(r.Context()), chi.URLParam(r, "recipeID"))
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, settings)
}
