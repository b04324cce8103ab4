package app

import (
	"context"
	"errors"
	"io"
	"math/rand/v2"
	"sync"

	"go.uber.org/zap"

	"meal-planner/internal/clipper"
	"meal-planner/internal/database"
	"meal-planner/internal/ghost"
	"meal-planner/internal/ingredient"
	"meal-planner/internal/metrics"
	"meal-planner/internal/planner"
	"meal-planner/internal/recipe"
	"meal-planner/internal/shopping"
)

var (
	// ErrInvalidInput is returned for requests the engine cannot act on.
	ErrInvalidInput = errors.New("invalid input")
	// ErrForbidden is returned when a user edits a recipe they do not own.
	ErrForbidden = errors.New("forbidden")
	// ErrNoPreviousPlan is returned when the user has no plan history.
	ErrNoPreviousPlan = errors.New("no previous plan")
	// ErrNotConfigured is returned when an optional integration is missing.
	ErrNotConfigured = errors.New("integration not configured")
	// ErrAttachmentNotFound is returned for references the attachment store does not hold.
	ErrAttachmentNotFound = errors.New("attachment not found")
)

// PostSource lists blog posts to import as recipes.
type PostSource interface {
	FetchRecipes(ctx context.Context) ([]ghost.Post, error)
}

// PageClipper fetches a recipe web page.
type PageClipper interface {
	ClipURL(ctx context.Context, url string) (*clipper.Page, error)
}

// AttachmentStore stores an uploaded file and returns a reference to it.
type AttachmentStore interface {
	Save(ctx context.Context, filename string, r io.Reader) (string, error)
}

// LocalAttachments is an AttachmentStore that can also serve and remove its files.
type LocalAttachments interface {
	AttachmentStore
	Open(ref string) (io.ReadCloser, error)
	Exists(ref string) bool
	Remove(ref string) error
}

// AttachmentFunc adapts a function to AttachmentStore.
type AttachmentFunc func(ctx context.Context, filename string, r io.Reader) (string, error)

func (f AttachmentFunc) Save(ctx context.Context, filename string, r io.Reader) (string, error) {
	return f(ctx, filename, r)
}

// Options carries the optional dependencies of an App.
type Options struct {
	DefaultServings int
	Cache           shopping.Cache
	Attachments     AttachmentStore
	Posts           PostSource
	Clipper         PageClipper
	// IDs mints line item ids; nil uses random nano ids.
	IDs ingredient.IDGenerator
	// Rand drives random assignment; nil seeds from the runtime.
	Rand *rand.Rand
	// DataPath is reported in the health snapshot.
	DataPath string
}

// App holds the application's dependencies and runs the engine against stored data.
type App struct {
	db       *database.DB
	log      *zap.Logger
	catalog  *ingredient.Repository
	recipes  *recipe.Repository
	plans    *planner.PlanRepository
	settings *planner.SettingsRepository
	metrics  *metrics.Store

	cache       shopping.Cache
	attachments AttachmentStore
	posts       PostSource
	clipper     PageClipper
	ids         ingredient.IDGenerator

	defaultServings int
	dataPath        string

	rngMu sync.Mutex
	rng   *rand.Rand
}

// New creates an App on top of an open database.
func New(db *database.DB, log *zap.Logger, opts Options) *App {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.Cache == nil {
		opts.Cache = shopping.NoopCache{}
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if opts.DefaultServings <= 0 {
		opts.DefaultServings = planner.DefaultServings
	}

	return &App{
		db:              db,
		log:             log,
		catalog:         ingredient.NewRepository(db.SQL),
		recipes:         recipe.NewRepository(db.SQL),
		plans:           planner.NewPlanRepository(db.SQL),
		settings:        planner.NewSettingsRepository(db.SQL),
		metrics:         metrics.NewStore(db.SQL),
		cache:           opts.Cache,
		attachments:     opts.Attachments,
		posts:           opts.Posts,
		clipper:         opts.Clipper,
		ids:             opts.IDs,
		defaultServings: opts.DefaultServings,
		dataPath:        opts.DataPath,
		rng:             opts.Rand,
	}
}

// withRand serializes access to the shared random source.
func (a *App) withRand(fn func(rng *rand.Rand)) {
	a.rngMu.Lock()
	defer a.rngMu.Unlock()
	fn(a.rng)
}

// record stores an operation metric. Failures are logged, never returned.
func (a *App) record(ctx context.Context, m metrics.OperationMetric) {
	if err := a.metrics.Record(ctx, m); err != nil {
		a.log.Warn("failed to record metric", zap.String("operation", m.Operation), zap.Error(err))
	}
}

func (a *App) invalidate(ctx context.Context, userID string) {
	if err := a.cache.Invalidate(ctx, userID); err != nil {
		a.log.Warn("failed to invalidate shopping list cache", zap.String("user_id", userID), zap.Error(err))
	}
}

func (a *App) clearCache(ctx context.Context) {
	if err := a.cache.Clear(ctx); err != nil {
		a.log.Warn("failed to clear shopping list cache", zap.Error(err))
	}
}
