package app

import (
	"context"
	"fmt"

	"meal-planner/internal/planner"
)

// Settings returns the user's planning settings, or the defaults when none were saved.
func (a *App) Settings(ctx context.Context, userID string) (planner.Settings, error) {
	s, err := a.settings.Get(ctx, userID)
	if err != nil {
		return planner.Settings{}, fmt.Errorf("failed to load settings: %w", err)
	}
	if s == nil {
		return planner.DefaultSettings(userID, a.defaultServings), nil
	}
	return *s, nil
}

// UpdateSettings replaces the user's settings.
func (a *App) UpdateSettings(ctx context.Context, userID string, s planner.Settings) (planner.Settings, error) {
	if s.DefaultServings <= 0 {
		return planner.Settings{}, fmt.Errorf("%w: default servings must be positive", ErrInvalidInput)
	}
	s.UserID = userID
	if s.NotedRecipes == nil {
		s.NotedRecipes = []string{}
	}
	if s.FavoriteRecipes == nil {
		s.FavoriteRecipes = []string{}
	}
	if err := a.settings.Save(ctx, s); err != nil {
		return planner.Settings{}, fmt.Errorf("failed to save settings: %w", err)
	}
	a.invalidate(ctx, userID)
	return s, nil
}

// ToggleNoted adds a recipe to, or removes it from, the list seeding the next plan.
func (a *App) ToggleNoted(ctx context.Context, userID, recipeID string) (planner.Settings, error) {
	return a.toggle(ctx, userID, recipeID, planner.Settings.ToggleNoted)
}

// ToggleFavorite marks or unmarks a favorite recipe.
func (a *App) ToggleFavorite(ctx context.Context, userID, recipeID string) (planner.Settings, error) {
	return a.toggle(ctx, userID, recipeID, planner.Settings.ToggleFavorite)
}

func (a *App) toggle(ctx context.Context, userID, recipeID string, fn func(planner.Settings, string) planner.Settings) (planner.Settings, error) {
	if _, err := a.GetRecipe(ctx, userID, recipeID); err != nil {
		return planner.Settings{}, err
	}
	s, err := a.Settings(ctx, userID)
	if err != nil {
		return planner.Settings{}, err
	}
	s = fn(s, recipeID)
	if err := a.settings.Save(ctx, s); err != nil {
		return planner.Settings{}, fmt.Errorf("failed to save settings: %w", err)
	}
	return s, nil
}
