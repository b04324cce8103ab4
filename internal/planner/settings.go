package planner

import "slices"

// DefaultServings is used when a user never chose a serving count.
const DefaultServings = 2

// Settings are a user's planning preferences.
type Settings struct {
	UserID          string   `json:"user_id"`
	ManageLunch     bool     `json:"manage_lunch"`
	ManageDinner    bool     `json:"manage_dinner"`
	DefaultServings int      `json:"default_servings" validate:"gte=1"`
	NotedRecipes    []string `json:"noted_recipes"`
	FavoriteRecipes []string `json:"favorite_recipes"`
}

// DefaultSettings returns the settings of a user who never saved any.
func DefaultSettings(userID string, servings int) Settings {
	if servings <= 0 {
		servings = DefaultServings
	}
	return Settings{
		UserID:          userID,
		ManageLunch:     true,
		ManageDinner:    true,
		DefaultServings: servings,
		NotedRecipes:    []string{},
		FavoriteRecipes: []string{},
	}
}

// ManagedSlots lists the slots the user plans, in display order.
func (s Settings) ManagedSlots() []MealSlot {
	var slots []MealSlot
	if s.ManageLunch {
		slots = append(slots, Lunch)
	}
	if s.ManageDinner {
		slots = append(slots, Dinner)
	}
	return slots
}

// ToggleNoted adds or removes a recipe from the list seeding the next plan.
func (s Settings) ToggleNoted(recipeID string) Settings {
	s.NotedRecipes = toggle(s.NotedRecipes, recipeID)
	return s
}

// ToggleFavorite adds or removes a favorite recipe.
func (s Settings) ToggleFavorite(recipeID string) Settings {
	s.FavoriteRecipes = toggle(s.FavoriteRecipes, recipeID)
	return s
}

func toggle(ids []string, id string) []string {
	if slices.Contains(ids, id) {
		return slices.DeleteFunc(slices.Clone(ids), func(x string) bool { return x == id })
	}
	return append(slices.Clone(ids), id)
}
