package planner

import (
	"math/rand/v2"
	"testing"

	"meal-planner/internal/recipe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRNG(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed+1))
}

func recipes(ids ...string) []recipe.Recipe {
	out := make([]recipe.Recipe, len(ids))
	for i, id := range ids {
		out[i] = recipe.Recipe{ID: id, Name: "Recipe " + id, Servings: 2}
	}
	return out
}

func TestAssign(t *testing.T) {
	plan := NewWeekPlan()
	plan = Assign(plan, Monday, Lunch, "r1", "Pasta", 2)

	t.Run("SetsOneCell", func(t *testing.T) {
		next := Assign(plan, Tuesday, Dinner, "r2", "Curry", 4)

		require.NotNil(t, next[Tuesday].Dinner)
		assert.Equal(t, Meal{RecipeID: "r2", RecipeName: "Curry", Servings: 4}, *next[Tuesday].Dinner)
		assert.Equal(t, "r1", next[Monday].Lunch.RecipeID)
		assert.Nil(t, plan[Tuesday].Dinner, "input plan must not change")
	})

	t.Run("OverwritesSilently", func(t *testing.T) {
		next := Assign(plan, Monday, Lunch, "r3", "Soup", 1)
		assert.Equal(t, "r3", next[Monday].Lunch.RecipeID)
		assert.Equal(t, "r1", plan[Monday].Lunch.RecipeID)
	})

	t.Run("CopiesMeals", func(t *testing.T) {
		next := Assign(plan, Sunday, Dinner, "r4", "Stew", 2)
		next[Monday].Lunch.Servings = 99
		assert.Equal(t, 2, plan[Monday].Lunch.Servings)
	})
}

func TestAssignRandom(t *testing.T) {
	pool := recipes("a", "b", "c")

	t.Run("PicksFromPool", func(t *testing.T) {
		rng := newRNG(1)
		for i := 0; i < 20; i++ {
			plan := AssignRandom(NewWeekPlan(), Friday, Dinner, pool, 3, rng)
			meal := plan[Friday].Dinner
			require.NotNil(t, meal)
			assert.Contains(t, []string{"a", "b", "c"}, meal.RecipeID)
			assert.Equal(t, 3, meal.Servings)
		}
	})

	t.Run("EmptyPool", func(t *testing.T) {
		plan := AssignRandom(NewWeekPlan(), Friday, Dinner, nil, 3, newRNG(1))
		assert.Nil(t, plan[Friday].Dinner)
	})
}

func TestAssignAllRandom(t *testing.T) {
	t.Run("NoRepeatsWithLargePool", func(t *testing.T) {
		pool := recipes("1", "2", "3", "4", "5", "6", "7", "8", "9", "10")
		for seed := uint64(0); seed < 50; seed++ {
			plan := AssignAllRandom(NewWeekPlan(), Lunch, pool, 2, newRNG(seed))

			seen := map[string]bool{}
			for _, day := range WeekDays {
				meal := plan[day].Lunch
				require.NotNil(t, meal, "day %s", day)
				assert.False(t, seen[meal.RecipeID], "recipe %s assigned twice", meal.RecipeID)
				seen[meal.RecipeID] = true
				assert.Nil(t, plan[day].Dinner)
			}
		}
	})

	t.Run("ExhaustedPoolLeavesDaysUnassigned", func(t *testing.T) {
		start := Assign(NewWeekPlan(), Sunday, Dinner, "keep", "Keep", 2)
		plan := AssignAllRandom(start, Dinner, recipes("x", "y", "x"), 2, newRNG(7))

		assert.NotNil(t, plan[Monday].Dinner)
		assert.NotNil(t, plan[Tuesday].Dinner)
		assert.NotEqual(t, plan[Monday].Dinner.RecipeID, plan[Tuesday].Dinner.RecipeID)
		for _, day := range []WeekDay{Wednesday, Thursday, Friday, Saturday} {
			assert.Nil(t, plan[day].Dinner, "day %s", day)
		}
		assert.Equal(t, "keep", plan[Sunday].Dinner.RecipeID)
	})

	t.Run("Deterministic", func(t *testing.T) {
		pool := recipes("a", "b", "c", "d", "e", "f", "g", "h")
		first := AssignAllRandom(NewWeekPlan(), Lunch, pool, 2, newRNG(42))
		second := AssignAllRandom(NewWeekPlan(), Lunch, pool, 2, newRNG(42))
		assert.Equal(t, first, second)
	})
}

func TestStartNewPlan(t *testing.T) {
	pool := recipes("a", "b", "c", "d", "e", "f", "g", "h", "i")
	settings := DefaultSettings("u1", 3)

	t.Run("SeedsNotedRecipes", func(t *testing.T) {
		plan := StartNewPlan([]string{"a", "b", "missing", "c"}, pool, settings, newRNG(3))

		cells := plan.Meals()
		require.Len(t, cells, 3)
		ids := map[string]bool{}
		for i, c := range cells {
			assert.Equal(t, WeekDays[i], c.Day)
			assert.Equal(t, 3, c.Meal.Servings)
			ids[c.Meal.RecipeID] = true
		}
		assert.Equal(t, map[string]bool{"a": true, "b": true, "c": true}, ids)
	})

	t.Run("AtMostOnePerDay", func(t *testing.T) {
		plan := StartNewPlan([]string{"a", "b", "c", "d", "e", "f", "g", "h", "i"}, pool, settings, newRNG(5))
		assert.Len(t, plan.Meals(), len(WeekDays))
		for _, day := range WeekDays {
			cells := plan[day]
			assert.False(t, cells.Lunch != nil && cells.Dinner != nil, "day %s has two meals", day)
		}
	})

	t.Run("OnlyManagedSlots", func(t *testing.T) {
		dinnerOnly := settings
		dinnerOnly.ManageLunch = false
		plan := StartNewPlan([]string{"a", "b", "c", "d"}, pool, dinnerOnly, newRNG(9))
		for _, c := range plan.Meals() {
			assert.Equal(t, Dinner, c.Slot)
		}
		assert.Len(t, plan.Meals(Dinner), 4)
	})

	t.Run("NoManagedSlots", func(t *testing.T) {
		none := settings
		none.ManageLunch, none.ManageDinner = false, false
		plan := StartNewPlan([]string{"a"}, pool, none, newRNG(1))
		assert.Empty(t, plan.Meals())
		assert.Len(t, plan, len(WeekDays))
	})
}

func TestState(t *testing.T) {
	assert.Equal(t, StateNone, State(nil))
	assert.Equal(t, StateNone, State(&Document{IsCurrent: false}))
	assert.Equal(t, StateActive, State(&Document{IsCurrent: true}))
}

func TestParse(t *testing.T) {
	day, err := ParseWeekDay("monday")
	require.NoError(t, err)
	assert.Equal(t, Monday, day)

	slot, err := ParseMealSlot("DINNER")
	require.NoError(t, err)
	assert.Equal(t, Dinner, slot)

	_, err = ParseWeekDay("Funday")
	assert.Error(t, err)
	_, err = ParseMealSlot("brunch")
	assert.Error(t, err)
}

func TestSettings(t *testing.T) {
	s := DefaultSettings("u1", 0)
	assert.Equal(t, DefaultServings, s.DefaultServings)
	assert.Equal(t, []MealSlot{Lunch, Dinner}, s.ManagedSlots())

	s = s.ToggleNoted("r1").ToggleNoted("r2")
	assert.Equal(t, []string{"r1", "r2"}, s.NotedRecipes)
	s = s.ToggleNoted("r1")
	assert.Equal(t, []string{"r2"}, s.NotedRecipes)

	s = s.ToggleFavorite("r9")
	assert.Equal(t, []string{"r9"}, s.FavoriteRecipes)
	s = s.ToggleFavorite("r9")
	assert.Empty(t, s.FavoriteRecipes)
}
