package app

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	"meal-planner/internal/ingredient"
	"meal-planner/internal/metrics"
)

// Catalog returns every catalog entry.
func (a *App) Catalog(ctx context.Context) (ingredient.Catalog, error) {
	return a.catalog.List(ctx)
}

// Analyze resolves a pasted ingredient list against the current catalog.
func (a *App) Analyze(ctx context.Context, text string) ([]ingredient.LineItem, error) {
	start := time.Now()
	catalog, err := a.catalog.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}

	items := ingredient.NewAnalyzer(ingredient.NewResolver(catalog), a.ids).Analyze(text)
	a.record(ctx, metrics.Since(metrics.OpAnalyze, len(items), start))
	return items, nil
}

// ApplyCatalogUpdates writes accepted catalog edits in one transaction.
// The edits change the entry for every recipe that references it.
func (a *App) ApplyCatalogUpdates(ctx context.Context, updates []ingredient.CatalogUpdate) error {
	if len(updates) == 0 {
		return nil
	}

	err := a.db.WithTx(ctx, func(tx *sql.Tx) error {
		repo := a.catalog.WithTx(tx)
		for _, u := range updates {
			if u.CatalogID == "" {
				return fmt.Errorf("%w: update without catalog id", ErrInvalidInput)
			}
			entry := u.After
			entry.ID = u.CatalogID
			if err := repo.Update(ctx, entry); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to apply catalog updates: %w", err)
	}

	a.log.Info("catalog updated", zap.Int("entries", len(updates)))
	a.clearCache(ctx)
	return nil
}
