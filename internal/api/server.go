package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"meal-planner/internal/app"
)

const maxUploadSize = 10 << 20

// Options configures the HTTP server.
type Options struct {
	// AllowedOrigins for CORS; empty allows any origin.
	AllowedOrigins []string
	// Webhook, when set, is mounted at /webhook outside the user middleware.
	Webhook http.Handler
}

// Server is the HTTP JSON API.
type Server struct {
	router    *chi.Mux
	app       *app.App
	log       *zap.Logger
	validator *Validator
}

// NewServer creates the API server and registers its routes.
func NewServer(a *app.App, log *zap.Logger, opts Options) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Server{
		router:    chi.NewRouter(),
		app:       a,
		log:       log,
		validator: NewValidator(),
	}
	s.routes(opts)
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes(opts Options) {
	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.logRequests)
	s.router.Use(middleware.Recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", userHeader},
		ExposedHeaders: []string{"X-Request-Id"},
		MaxAge:         int((12 * time.Hour).Seconds()),
	}))

	s.router.Get("/health", s.handleHealth)
	if opts.Webhook != nil {
		s.router.Method(http.MethodPost, "/webhook", opts.Webhook)
	}

	s.router.Group(func(r chi.Router) {
		r.Use(s.requireUser)

		r.Route("/ingredients", func(r chi.Router) {
			r.Get("/", s.handleListIngredients)
			r.Post("/analyze", s.handleAnalyze)
			r.Post("/updates", s.handleApplyUpdates)
		})

		r.Route("/recipes", func(r chi.Router) {
			r.Get("/", s.handleListRecipes)
			r.Post("/", s.handleSaveRecipe)
			r.Post("/clip", s.handleClipRecipe)
			r.Get("/{id}", s.handleGetRecipe)
		})

		r.Route("/attachments", func(r chi.Router) {
			r.Post("/", s.handleUploadAttachment)
			r.Get("/{ref}", s.handleGetAttachment)
			r.Delete("/{ref}", s.handleDeleteAttachment)
		})

		r.Route("/plans", func(r chi.Router) {
			r.Post("/", s.handleCreatePlan)
			r.Get("/current", s.handleCurrentPlan)
			r.Get("/previous", s.handlePreviousPlan)
			r.Get("/history", s.handlePlanHistory)
			r.Get("/state", s.handlePlanState)
			r.Post("/current/random/{slot}", s.handleAssignAllRandom)
			r.Put("/current/{day}/{slot}", s.handleAssignMeal)
			r.Post("/current/{day}/{slot}/random", s.handleAssignRandom)
		})

		r.Get("/shopping-list", s.handleShoppingList)

		r.Route("/settings", func(r chi.Router) {
			r.Get("/", s.handleGetSettings)
			r.Put("/", s.handleUpdateSettings)
			r.Post("/noted/{recipeID}", s.handleToggleNoted)
			r.Post("/favorites/{recipeID}", s.handleToggleFavorite)
		})
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
