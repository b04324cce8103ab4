package app

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"meal-planner/internal/clipper"
	"meal-planner/internal/config"
	"meal-planner/internal/database"
	"meal-planner/internal/ghost"
	"meal-planner/internal/shopping"
	"meal-planner/internal/storage"
)

// Runtime is an App wired from configuration, plus the resources it owns.
type Runtime struct {
	App *App
	DB  *database.DB

	closers []func() error
}

// Bootstrap opens the database and builds the App with every integration the config enables.
// Redis is optional: when it cannot be reached the shopping list is computed on every request.
func Bootstrap(ctx context.Context, cfg *config.Config, log *zap.Logger) (*Runtime, error) {
	db, err := database.NewDB(cfg.DatabasePath, log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	rt := &Runtime{DB: db, closers: []func() error{db.Close}}

	opts := Options{
		DefaultServings: cfg.DefaultServings,
		Cache:           shopping.NoopCache{},
		Clipper:         clipper.NewClipper(nil),
		DataPath:        filepath.Dir(cfg.DatabasePath),
	}

	if cfg.RedisEnabled() {
		cache, err := shopping.NewRedisCache(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.ShoppingCacheTTL)
		if err != nil {
			log.Warn("shopping list cache disabled", zap.Error(err))
		} else {
			opts.Cache = cache
			rt.closers = append(rt.closers, cache.Close)
		}
	}

	var ghostClient *ghost.Client
	if cfg.GhostURL != "" {
		ghostClient = ghost.NewClient(cfg.GhostURL, cfg.GhostContentKey, cfg.GhostAdminKey)
	}
	if cfg.GhostEnabled() {
		opts.Posts = ghostClient
	}

	if ghostClient != nil && cfg.GhostAdminKey != "" {
		opts.Attachments = AttachmentFunc(ghostClient.UploadImage)
		log.Info("attachments are uploaded to ghost")
	} else {
		files, err := storage.NewFileStore(cfg.AttachmentsPath)
		if err != nil {
			rt.Close()
			return nil, fmt.Errorf("failed to initialize attachment store: %w", err)
		}
		opts.Attachments = files
	}

	rt.App = New(db, log, opts)
	return rt, nil
}

// Close releases everything Bootstrap opened, newest first.
func (rt *Runtime) Close() error {
	var errs []error
	for i := len(rt.closers) - 1; i >= 0; i-- {
		if err := rt.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
