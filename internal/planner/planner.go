package planner

import (
	"errors"
	"math/rand/v2"
	"time"

	"meal-planner/internal/recipe"
)

// ErrNoCurrentPlan is returned when an operation needs the user's current plan and there is none.
var ErrNoCurrentPlan = errors.New("no current plan")

// Document is a stored week plan. Only one document per user is current; the rest are history.
type Document struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Plan      WeekPlan  `json:"plan"`
	CreatedAt time.Time `json:"created_at"`
	IsCurrent bool      `json:"is_current"`
}

// PlanState is the lifecycle state of a user's planning.
type PlanState string

const (
	StateNone   PlanState = "NONE"
	StateActive PlanState = "ACTIVE"
)

// State reports whether the user has a current plan.
func State(current *Document) PlanState {
	if current == nil || !current.IsCurrent {
		return StateNone
	}
	return StateActive
}

// StartNewPlan builds the plan that replaces the current one.
// Noted recipes are shuffled and placed one per day in week order, each in a random
// managed slot. Ids that match no recipe are dropped, as are recipes beyond the seventh.
func StartNewPlan(noted []string, recipes []recipe.Recipe, settings Settings, rng *rand.Rand) WeekPlan {
	plan := NewWeekPlan()
	slots := settings.ManagedSlots()
	if len(slots) == 0 {
		return plan
	}

	byID := make(map[string]recipe.Recipe, len(recipes))
	for _, r := range recipes {
		byID[r.ID] = r
	}

	var picked []recipe.Recipe
	seen := make(map[string]bool)
	for _, id := range noted {
		r, ok := byID[id]
		if !ok || seen[id] {
			continue
		}
		seen[id] = true
		picked = append(picked, r)
	}
	rng.Shuffle(len(picked), func(i, j int) {
		picked[i], picked[j] = picked[j], picked[i]
	})

	for i, r := range picked {
		if i >= len(WeekDays) {
			break
		}
		day := WeekDays[i]
		cells := plan[day]
		cells.set(slots[rng.IntN(len(slots))], &Meal{
			RecipeID:   r.ID,
			RecipeName: r.Name,
			Servings:   settings.DefaultServings,
		})
		plan[day] = cells
	}
	return plan
}
