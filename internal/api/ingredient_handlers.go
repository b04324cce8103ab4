package api

import (
	"net/http"

	"meal-planner/internal/ingredient"
)

type analyzeRequest struct {
	Text string `json:"text" validate:"required"`
}

type catalogUpdatesRequest struct {
	Updates []ingredient.CatalogUpdate `json:"updates" validate:"required,min=1"`
}

func (s *Server) handleListIngredients(w http.ResponseWriter, r *http.Request) {
	catalog, err := s.app.Catalog(r.Context())
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, catalog)
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := s.decode(r, &req); err != nil {
		s.handleError(w, r, err)
		return
	}
	items, err := s.app.Analyze(r.Context(), req.Text)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, items)
}

func (s *Server) handleApplyUpdates(w http.ResponseWriter, r *http.Request) {
	var req catalogUpdatesRequest
	if err := s.decode(r, &req); err != nil {
		s.handleError(w, r, err)
		return
	}
	if err := s.app.ApplyCatalogUpdates(r.Context(), req.Updates); err != nil {
		s.handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
