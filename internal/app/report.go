package app

import (
	"context"
	"fmt"

	"meal-planner/internal/metrics"
)

// MetricsReport renders system health and the usage of the last days.
func (a *App) MetricsReport(ctx context.Context, days int) (string, error) {
	usage, err := a.metrics.GetDailyUsage(ctx, days)
	if err != nil {
		return "", fmt.Errorf("failed to load usage: %w", err)
	}
	recipes, err := a.recipes.Count(ctx)
	if err != nil {
		return "", err
	}
	health := metrics.GetSysHealth(a.dataPath)
	health.Recipes = recipes
	return metrics.Report(health, usage), nil
}

// CleanupMetrics deletes metrics older than the given number of days.
func (a *App) CleanupMetrics(ctx context.Context, olderThanDays int) (int64, error) {
	if olderThanDays <= 0 {
		return 0, fmt.Errorf("%w: days must be positive", ErrInvalidInput)
	}
	return a.metrics.Cleanup(ctx, olderThanDays)
}
