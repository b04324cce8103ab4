package shopping

import (
	"meal-planner/internal/ingredient"
	"meal-planner/internal/planner"
	"meal-planner/internal/recipe"
)

// Meal is one planned cell joined with its recipe.
type Meal struct {
	Day      planner.WeekDay
	Recipe   recipe.Recipe
	Servings int
}

// Item is one shopping list row: a catalog entry, a unit and the running total for it.
type Item struct {
	CatalogID  string              `json:"catalog_id"`
	Name       string              `json:"name"`
	Category   ingredient.Category `json:"category"`
	Aliases    []string            `json:"aliases,omitempty"`
	Amount     string              `json:"amount"`
	Unit       string              `json:"unit"`
	UsedOnDays []planner.WeekDay   `json:"used_on_days"`

	total float64
}

// List groups rows by category. Rows keep the order they were first encountered in.
type List map[ingredient.Category][]Item

// Categories returns the non-empty categories in display order.
func (l List) Categories() []ingredient.Category {
	var out []ingredient.Category
	for _, c := range ingredient.Categories {
		if len(l[c]) > 0 {
			out = append(out, c)
		}
	}
	return out
}

// Len counts the rows over all categories.
func (l List) Len() int {
	n := 0
	for _, items := range l {
		n += len(items)
	}
	return n
}
