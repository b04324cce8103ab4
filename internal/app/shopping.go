package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"meal-planner/internal/metrics"
	"meal-planner/internal/recipe"
	"meal-planner/internal/shopping"
)

// ShoppingList aggregates the ingredients of the current plan's managed slots.
// Lists are cached per user until the plan, settings, recipes or catalog change.
// A list built while one of those changed is returned but not cached.
func (a *App) ShoppingList(ctx context.Context, userID string) (shopping.List, error) {
	if list, ok, err := a.cache.Get(ctx, userID); err != nil {
		a.log.Warn("shopping list cache unavailable", zap.Error(err))
	} else if ok {
		return list, nil
	}
	version, versionErr := a.cache.Version(ctx, userID)
	if versionErr != nil {
		a.log.Warn("shopping list cache unavailable", zap.Error(versionErr))
	}

	start := time.Now()
	doc, err := a.CurrentPlan(ctx, userID)
	if err != nil {
		return nil, err
	}
	settings, err := a.Settings(ctx, userID)
	if err != nil {
		return nil, err
	}

	slots := settings.ManagedSlots()
	var ids []string
	if len(slots) > 0 {
		for _, cell := range doc.Plan.Meals(slots...) {
			ids = append(ids, cell.Meal.RecipeID)
		}
	}

	recipes, err := a.recipes.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load planned recipes: %w", err)
	}
	byID := make(map[string]recipe.Recipe, len(recipes))
	for _, r := range recipes {
		byID[r.ID] = r
	}
	catalog, err := a.catalog.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}

	list := shopping.Aggregate(shopping.MealsFromPlan(doc.Plan, slots, byID), catalog)
	a.record(ctx, metrics.Since(metrics.OpAggregate, list.Len(), start))

	if versionErr == nil {
		if err := a.cache.Set(ctx, userID, version, list); err != nil {
			a.log.Warn("failed to cache shopping list", zap.Error(err))
		}
	}
	return list, nil
}
