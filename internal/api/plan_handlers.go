package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"meal-planner/internal/planner"
)

type assignRequest struct {
	RecipeID string `json:"recipe_id" validate:"required"`
	Servings int    `json:"servings" validate:"gte=0"`
}

func (s *Server) handleCurrentPlan(w http.ResponseWriter, r *http.Request) {
	doc, err := s.app.CurrentPlan(r.Context(), getUserID(r.Context()))
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, doc)
}

func (s *Server) handlePreviousPlan(w http.ResponseWriter, r *http.Request) {
	doc, err := s.app.PreviousPlan(r.Context(), getUserID(r.Context()))
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, doc)
}

const defaultHistoryLimit = 10

type planStateResponse struct {
	State planner.PlanState `json:"state"`
}

func (s *Server) handlePlanHistory(w http.ResponseWriter, r *http.Request) {
	limit := defaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			s.handleError(w, r, &ValidationError{Message: "limit must be a number"})
			return
		}
		limit = n
	}
	docs, err := s.app.PlanHistory(r.Context(), getUserID(r.Context()), limit)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, docs)
}

func (s *Server) handlePlanState(w http.ResponseWriter, r *http.Request) {
	state, err := s.app.PlanState(r.Context(), getUserID(r.Context()))
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, planStateResponse{State: state})
}

func (s *Server) handleCreatePlan(w http.ResponseWriter, r *http.Request) {
	doc, err := s.app.CreatePlan(r.Context(), getUserID(r.Context()))
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, doc)
}

func (s *Server) handleAssignMeal(w http.ResponseWriter, r *http.Request) {
	day, slot, ok := s.cell(w, r)
	if !ok {
		return
	}
	var req assignRequest
	if err := s.decode(r, &req); err != nil {
		s.handleError(w, r, err)
		return
	}
	doc, err := s.app.AssignMeal(r.Context(), getUserID(r.Context()), day, slot, req.RecipeID, req.Servings)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, doc)
}

func (s *Server) handleAssignRandom(w http.ResponseWriter, r *http.Request) {
	day, slot, ok := s.cell(w, r)
	if !ok {
		return
	}
	doc, err := s.app.AssignRandomMeal(r.Context(), getUserID(r.Context()), day, slot)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, doc)
}

func (s *Server) handleAssignAllRandom(w http.ResponseWriter, r *http.Request) {
	slot, err := planner.ParseMealSlot(chi.URLParam(r, "slot"))
	if err != nil {
		s.handleError(w, r, &ValidationError{Message: err.Error()})
		return
	}
	doc, err := s.app.AssignAllRandom(r.Context(), getUserID(r.Context()), slot)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, doc)
}

func (s *Server) handleShoppingList(w http.ResponseWriter, r *http.Request) {
	list, err := s.app.ShoppingList(r.Context(), getUserID(r.Context()))
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, list)
}

// cell parses the day and slot path parameters, writing a 400 when either is invalid.
func (s *Server) cell(w http.ResponseWriter, r *http.Request) (planner.WeekDay, planner.MealSlot, bool) {
	day, err := planner.ParseWeekDay(chi.URLParam(r, "day"))
	if err != nil {
		s.handleError(w, r, &ValidationError{Message: err.Error()})
		return "", "", false
	}
	slot, err := planner.ParseMealSlot(chi.URLParam(r, "slot"))
	if err != nil {
		s.handleError(w, r, &ValidationError{Message: err.Error()})
		return "", "", false
	}
	return day, slot, true
}
