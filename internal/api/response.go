package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"meal-planner/internal/app"
	"meal-planner/internal/ingredient"
	"meal-planner/internal/planner"
	"meal-planner/internal/recipe"
)

// Envelope is the body of every response.
type Envelope struct {
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Success bool   `json:"success"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(Envelope{Data: data, Success: status < 400}); err != nil {
		s.log.Error("failed to encode response", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(Envelope{Error: message}); err != nil {
		s.log.Error("failed to encode error response", zap.Error(err))
	}
}

// handleError maps domain errors to status codes. Anything unknown is a 500 and gets logged.
func (s *Server) handleError(w http.ResponseWriter, r *http.Request, err error) {
	var invalid *ValidationError
	switch {
	case errors.As(err, &invalid):
		s.writeError(w, http.StatusBadRequest, invalid.Error())
	case errors.Is(err, recipe.ErrNotFound),
		errors.Is(err, planner.ErrNoCurrentPlan),
		errors.Is(err, app.ErrNoPreviousPlan),
		errors.Is(err, app.ErrAttachmentNotFound):
		s.writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, app.ErrInvalidInput),
		errors.Is(err, ingredient.ErrUnknownCatalogEntry):
		s.writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, app.ErrForbidden):
		s.writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, app.ErrNotConfigured):
		s.writeError(w, http.StatusNotImplemented, err.Error())
	default:
		s.log.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

// decode reads a JSON body into v and validates it.
func (s *Server) decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return &ValidationError{Message: fmt.Sprintf("invalid request body: %v", err)}
	}
	return s.validator.Validate(v)
}
