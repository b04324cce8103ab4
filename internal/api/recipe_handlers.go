package api

import (
	"io"
	"mime"
	"net/http"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"meal-planner/internal/ingredient"
	"meal-planner/internal/recipe"
)

type saveRecipeRequest struct {
	ID                  string                `json:"id"`
	Name                string                `json:"name" validate:"required"`
	Description         string                `json:"description"`
	Link                string                `json:"link" validate:"omitempty,url"`
	Servings            int                   `json:"servings" validate:"gte=1"`
	AnalyzedIngredients []ingredient.LineItem `json:"analyzed_ingredients"`
	ImageURL            string                `json:"image_url"`
	PDFURL              string                `json:"pdf_url"`
	IsPrivate           bool                  `json:"is_private"`
	Categories          []string              `json:"categories"`
}

func (req saveRecipeRequest) recipe() recipe.Recipe {
	return recipe.Recipe{
		ID:                  req.ID,
		Name:                req.Name,
		Description:         req.Description,
		Link:                req.Link,
		Servings:            req.Servings,
		AnalyzedIngredients: req.AnalyzedIngredients,
		ImageURL:            req.ImageURL,
		PDFURL:              req.PDFURL,
		IsPrivate:           req.IsPrivate,
		Categories:          req.Categories,
	}
}

type clipRequest struct {
	URL string `json:"url" validate:"required,url"`
}

type clipResponse struct {
	Draft recipe.Recipe `json:"draft"`
}

type attachmentResponse struct {
	Ref string `json:"ref"`
}

func (s *Server) handleListRecipes(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := recipe.Filter{
		Visibility: recipe.Visibility(query.Get("filter")),
		Search:     query.Get("q"),
		Categories: query["category"],
	}
	recipes, err := s.app.ListRecipes(r.Context(), getUserID(r.Context()), filter)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, recipes)
}

func (s *Server) handleGetRecipe(w http.ResponseWriter, r *http.Request) {
	rec, err := s.app.GetRecipe(r.Context(), getUserID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleSaveRecipe(w http.ResponseWriter, r *http.Request) {
	var req saveRecipeRequest
	if err := s.decode(r, &req); err != nil {
		s.handleError(w, r, err)
		return
	}
	res, err := s.app.SaveRecipe(r.Context(), getUserID(r.Context()), req.recipe())
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleClipRecipe(w http.ResponseWriter, r *http.Request) {
	var req clipRequest
	if err := s.decode(r, &req); err != nil {
		s.handleError(w, r, err)
		return
	}
	res, err := s.app.ClipRecipe(r.Context(), req.URL)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, clipResponse{Draft: res.Draft(s.app.DefaultServings())})
}

func (s *Server) handleUploadAttachment(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		s.handleError(w, r, &ValidationError{Message: "invalid multipart form"})
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		s.handleError(w, r, &ValidationError{Message: "missing file"})
		return
	}
	defer file.Close()

	ref, err := s.app.SaveAttachment(r.Context(), header.Filename, file)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, attachmentResponse{Ref: ref})
}

func (s *Server) handleGetAttachment(w http.ResponseWriter, r *http.Request) {
	ref := chi.URLParam(r, "ref")
	rc, err := s.app.OpenAttachment(r.Context(), ref)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	defer rc.Close()

	contentType := mime.TypeByExtension(filepath.Ext(ref))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, rc); err != nil {
		s.log.Warn("failed to stream attachment", zap.String("ref", ref), zap.Error(err))
	}
}

func (s *Server) handleDeleteAttachment(w http.ResponseWriter, r *http.Request) {
	if err := s.app.DeleteAttachment(r.Context(), chi.URLParam(r, "ref")); err != nil {
		s.handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
