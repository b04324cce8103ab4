package shopping

import (
	"slices"

	"meal-planner/internal/ingredient"
	"meal-planner/internal/planner"
	"meal-planner/internal/recipe"
)

type rowKey struct {
	catalogID string
	unit      string
}

type rowPos struct {
	category ingredient.Category
	index    int
}

// Aggregate sums the ingredients of the planned meals into a shopping list.
//
// Amounts are scaled from the recipe's servings to the planned servings. Rows
// are keyed by catalog entry and unit string; the same ingredient written with
// two different units stays on two rows. Lines not linked to a known catalog
// entry are skipped, as are meals whose recipe has no positive serving count.
func Aggregate(meals []Meal, catalog ingredient.Catalog) List {
	entries := catalog.ByID()
	list := List{}
	rows := make(map[rowKey]rowPos)

	for _, meal := range meals {
		if meal.Recipe.Servings <= 0 {
			continue
		}
		scale := float64(meal.Servings) / float64(meal.Recipe.Servings)

		for _, line := range meal.Recipe.AnalyzedIngredients {
			if line.IsNew() {
				continue
			}
			entry, ok := entries[line.CatalogID]
			if !ok {
				continue
			}

			magnitude, unit := ingredient.ParseAmount(line.Amount)
			qty := magnitude * scale
			key := rowKey{catalogID: entry.ID, unit: unit}

			if pos, ok := rows[key]; ok {
				item := &list[pos.category][pos.index]
				item.total += qty
				item.UsedOnDays = addDay(item.UsedOnDays, meal.Day)
				continue
			}

			category := ingredient.ParseCategory(string(entry.Category))
			list[category] = append(list[category], Item{
				CatalogID:  entry.ID,
				Name:       entry.Name,
				Category:   category,
				Aliases:    slices.Clone(entry.Aliases),
				Unit:       unit,
				UsedOnDays: []planner.WeekDay{meal.Day},
				total:      qty,
			})
			rows[key] = rowPos{category: category, index: len(list[category]) - 1}
		}
	}

	for _, items := range list {
		for i := range items {
			items[i].Amount = ingredient.FormatAmount(items[i].total)
		}
	}
	return list
}

// addDay inserts day keeping week order and no duplicates.
func addDay(days []planner.WeekDay, day planner.WeekDay) []planner.WeekDay {
	if slices.Contains(days, day) {
		return days
	}
	days = append(days, day)
	slices.SortFunc(days, func(a, b planner.WeekDay) int {
		return slices.Index(planner.WeekDays, a) - slices.Index(planner.WeekDays, b)
	})
	return days
}

// MealsFromPlan joins the assigned cells of the given slots with their recipes, in week order.
// Cells whose recipe is missing are skipped. No slots means no meals.
func MealsFromPlan(plan planner.WeekPlan, slots []planner.MealSlot, recipes map[string]recipe.Recipe) []Meal {
	var meals []Meal
	if len(slots) == 0 {
		return meals
	}
	for _, cell := range plan.Meals(slots...) {
		r, ok := recipes[cell.Meal.RecipeID]
		if !ok {
			continue
		}
		meals = append(meals, Meal{Day: cell.Day, Recipe: r, Servings: cell.Meal.Servings})
	}
	return meals
}
