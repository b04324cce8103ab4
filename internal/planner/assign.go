package planner

import (
	"math/rand/v2"

	"meal-planner/internal/recipe"
)

// Assign returns a copy of plan with one cell set. Any previous meal in the cell is replaced.
func Assign(plan WeekPlan, day WeekDay, slot MealSlot, recipeID, recipeName string, servings int) WeekPlan {
	out := plan.Clone()
	cells := out[day]
	cells.set(slot, &Meal{RecipeID: recipeID, RecipeName: recipeName, Servings: servings})
	out[day] = cells
	return out
}

// AssignRandom assigns a uniformly picked recipe to one cell.
// An empty pool returns an unchanged copy.
func AssignRandom(plan WeekPlan, day WeekDay, slot MealSlot, recipes []recipe.Recipe, servings int, rng *rand.Rand) WeekPlan {
	if len(recipes) == 0 {
		return plan.Clone()
	}
	r := recipes[rng.IntN(len(recipes))]
	return Assign(plan, day, slot, r.ID, r.Name, servings)
}

// AssignAllRandom fills slot on every day in week order, drawing recipes without replacement.
// Once the pool runs dry the remaining days keep whatever they had.
func AssignAllRandom(plan WeekPlan, slot MealSlot, recipes []recipe.Recipe, servings int, rng *rand.Rand) WeekPlan {
	pool := uniqueRecipes(recipes)
	out := plan.Clone()

	for _, day := range WeekDays {
		if len(pool) == 0 {
			break
		}
		i := rng.IntN(len(pool))
		r := pool[i]
		pool[i] = pool[len(pool)-1]
		pool = pool[:len(pool)-1]

		cells := out[day]
		cells.set(slot, &Meal{RecipeID: r.ID, RecipeName: r.Name, Servings: servings})
		out[day] = cells
	}
	return out
}

// uniqueRecipes copies the pool, keeping the first recipe per id.
func uniqueRecipes(recipes []recipe.Recipe) []recipe.Recipe {
	seen := make(map[string]bool, len(recipes))
	pool := make([]recipe.Recipe, 0, len(recipes))
	for _, r := range recipes {
		if seen[r.ID] {
			continue
		}
		seen[r.ID] = true
		pool = append(pool, r)
	}
	return pool
}
