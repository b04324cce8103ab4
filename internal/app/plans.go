package app

import (
	"context"
	"database/sql"
	"fmt"
	"math/rand/v2"
	"slices"

	"go.uber.org/zap"

	"meal-planner/internal/planner"
	"meal-planner/internal/recipe"
)

// CurrentPlan returns the user's current plan or planner.ErrNoCurrentPlan.
func (a *App) CurrentPlan(ctx context.Context, userID string) (planner.Document, error) {
	doc, err := a.plans.Current(ctx, userID)
	if err != nil {
		return planner.Document{}, fmt.Errorf("failed to load current plan: %w", err)
	}
	if doc == nil {
		return planner.Document{}, planner.ErrNoCurrentPlan
	}
	return *doc, nil
}

// PreviousPlan returns the latest superseded plan, read-only history.
func (a *App) PreviousPlan(ctx context.Context, userID string) (planner.Document, error) {
	doc, err := a.plans.Previous(ctx, userID)
	if err != nil {
		return planner.Document{}, fmt.Errorf("failed to load previous plan: %w", err)
	}
	if doc == nil {
		return planner.Document{}, ErrNoPreviousPlan
	}
	return *doc, nil
}

// MaxPlanHistory caps how many plans PlanHistory returns.
const MaxPlanHistory = 52

// PlanHistory returns the user's most recent plans, newest first, current one included.
func (a *App) PlanHistory(ctx context.Context, userID string, limit int) ([]planner.Document, error) {
	if limit <= 0 || limit > MaxPlanHistory {
		return nil, fmt.Errorf("%w: limit must be between 1 and %d", ErrInvalidInput, MaxPlanHistory)
	}
	docs, err := a.plans.ListRecentByUserID(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load plan history: %w", err)
	}
	return docs, nil
}

// PlanState reports whether the user has a current plan.
func (a *App) PlanState(ctx context.Context, userID string) (planner.PlanState, error) {
	doc, err := a.plans.Current(ctx, userID)
	if err != nil {
		return planner.StateNone, fmt.Errorf("failed to load current plan: %w", err)
	}
	return planner.State(doc), nil
}

// CreatePlan replaces the user's current plan with one seeded from their noted recipes.
// The old plan becomes history and the noted list is cleared in the same transaction.
func (a *App) CreatePlan(ctx context.Context, userID string) (planner.Document, error) {
	settings, err := a.Settings(ctx, userID)
	if err != nil {
		return planner.Document{}, err
	}
	noted, err := a.visibleRecipes(ctx, userID, settings.NotedRecipes)
	if err != nil {
		return planner.Document{}, err
	}

	var plan planner.WeekPlan
	a.withRand(func(rng *rand.Rand) {
		plan = planner.StartNewPlan(settings.NotedRecipes, noted, settings, rng)
	})

	var doc planner.Document
	err = a.db.WithTx(ctx, func(tx *sql.Tx) error {
		plans := a.plans.WithTx(tx)
		if err := plans.MarkNotCurrent(ctx, userID); err != nil {
			return err
		}
		doc, err = plans.Insert(ctx, planner.Document{UserID: userID, Plan: plan, IsCurrent: true})
		if err != nil {
			return err
		}
		settings.NotedRecipes = []string{}
		return a.settings.WithTx(tx).Save(ctx, settings)
	})
	if err != nil {
		return planner.Document{}, fmt.Errorf("failed to create plan: %w", err)
	}

	a.log.Info("plan created", zap.String("user_id", userID), zap.String("plan_id", doc.ID),
		zap.Int("meals", len(plan.Meals())))
	a.invalidate(ctx, userID)
	return doc, nil
}

// AssignMeal places a recipe in one cell of the current plan, replacing what was there.
// Non-positive servings fall back to the user's default.
func (a *App) AssignMeal(ctx context.Context, userID string, day planner.WeekDay, slot planner.MealSlot, recipeID string, servings int) (planner.Document, error) {
	if err := checkCell(day, slot); err != nil {
		return planner.Document{}, err
	}
	doc, err := a.CurrentPlan(ctx, userID)
	if err != nil {
		return planner.Document{}, err
	}
	rec, err := a.GetRecipe(ctx, userID, recipeID)
	if err != nil {
		return planner.Document{}, err
	}
	if servings <= 0 {
		settings, err := a.Settings(ctx, userID)
		if err != nil {
			return planner.Document{}, err
		}
		servings = settings.DefaultServings
	}

	doc.Plan = planner.Assign(doc.Plan, day, slot, rec.ID, rec.Name, servings)
	return a.storePlan(ctx, doc)
}

// AssignRandomMeal fills one cell with a random recipe the user can see.
func (a *App) AssignRandomMeal(ctx context.Context, userID string, day planner.WeekDay, slot planner.MealSlot) (planner.Document, error) {
	if err := checkCell(day, slot); err != nil {
		return planner.Document{}, err
	}
	return a.assignFromPool(ctx, userID, func(doc planner.Document, pool []recipe.Recipe, servings int, rng *rand.Rand) planner.WeekPlan {
		return planner.AssignRandom(doc.Plan, day, slot, pool, servings, rng)
	})
}

// AssignAllRandom fills a slot on every day with distinct random recipes.
func (a *App) AssignAllRandom(ctx context.Context, userID string, slot planner.MealSlot) (planner.Document, error) {
	if err := checkCell(planner.Monday, slot); err != nil {
		return planner.Document{}, err
	}
	return a.assignFromPool(ctx, userID, func(doc planner.Document, pool []recipe.Recipe, servings int, rng *rand.Rand) planner.WeekPlan {
		return planner.AssignAllRandom(doc.Plan, slot, pool, servings, rng)
	})
}

type assignFunc func(doc planner.Document, pool []recipe.Recipe, servings int, rng *rand.Rand) planner.WeekPlan

func (a *App) assignFromPool(ctx context.Context, userID string, assign assignFunc) (planner.Document, error) {
	doc, err := a.CurrentPlan(ctx, userID)
	if err != nil {
		return planner.Document{}, err
	}
	settings, err := a.Settings(ctx, userID)
	if err != nil {
		return planner.Document{}, err
	}
	pool, err := a.recipes.List(ctx, userID, recipe.VisibilityAll)
	if err != nil {
		return planner.Document{}, fmt.Errorf("failed to list recipes: %w", err)
	}

	a.withRand(func(rng *rand.Rand) {
		doc.Plan = assign(doc, pool, settings.DefaultServings, rng)
	})
	return a.storePlan(ctx, doc)
}

func (a *App) storePlan(ctx context.Context, doc planner.Document) (planner.Document, error) {
	if err := a.plans.UpdatePlan(ctx, doc.ID, doc.Plan); err != nil {
		return planner.Document{}, fmt.Errorf("failed to store plan: %w", err)
	}
	a.invalidate(ctx, doc.UserID)
	return doc, nil
}

// visibleRecipes loads recipes by id, dropping missing ones and other users' private ones.
func (a *App) visibleRecipes(ctx context.Context, userID string, ids []string) ([]recipe.Recipe, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	recipes, err := a.recipes.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load recipes: %w", err)
	}
	return slices.DeleteFunc(recipes, func(r recipe.Recipe) bool {
		return r.IsPrivate && r.OwnerID != userID
	}), nil
}

func checkCell(day planner.WeekDay, slot planner.MealSlot) error {
	if !slices.Contains(planner.WeekDays, day) {
		return fmt.Errorf("%w: unknown day %q", ErrInvalidInput, day)
	}
	if !slices.Contains(planner.MealSlots, slot) {
		return fmt.Errorf("%w: unknown slot %q", ErrInvalidInput, slot)
	}
	return nil
}
