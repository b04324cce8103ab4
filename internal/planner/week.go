package planner

import (
	"fmt"
	"slices"
	"strings"
)

// WeekDay is one of the seven planning days.
type WeekDay string

const (
	Monday    WeekDay = "Monday"
	Tuesday   WeekDay = "Tuesday"
	Wednesday WeekDay = "Wednesday"
	Thursday  WeekDay = "Thursday"
	Friday    WeekDay = "Friday"
	Saturday  WeekDay = "Saturday"
	Sunday    WeekDay = "Sunday"
)

// WeekDays is the fixed week order used for iteration everywhere.
var WeekDays = []WeekDay{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

// ParseWeekDay accepts a day name in any case.
func ParseWeekDay(s string) (WeekDay, error) {
	for _, d := range WeekDays {
		if strings.EqualFold(string(d), strings.TrimSpace(s)) {
			return d, nil
		}
	}
	return "", fmt.Errorf("invalid week day %q", s)
}

// MealSlot is a meal of the day.
type MealSlot string

const (
	Lunch  MealSlot = "lunch"
	Dinner MealSlot = "dinner"
)

// MealSlots lists the slots in display order.
var MealSlots = []MealSlot{Lunch, Dinner}

// ParseMealSlot accepts a slot name in any case.
func ParseMealSlot(s string) (MealSlot, error) {
	for _, m := range MealSlots {
		if strings.EqualFold(string(m), strings.TrimSpace(s)) {
			return m, nil
		}
	}
	return "", fmt.Errorf("invalid meal slot %q", s)
}

// Meal is a recipe assigned to a cell.
type Meal struct {
	RecipeID   string `json:"recipe_id"`
	RecipeName string `json:"recipe_name"`
	Servings   int    `json:"servings"`
}

// DayPlan holds at most one meal per slot.
type DayPlan struct {
	Lunch  *Meal `json:"lunch,omitempty"`
	Dinner *Meal `json:"dinner,omitempty"`
}

// Get returns the meal in slot, or nil.
func (d DayPlan) Get(slot MealSlot) *Meal {
	switch slot {
	case Lunch:
		return d.Lunch
	case Dinner:
		return d.Dinner
	}
	return nil
}

func (d *DayPlan) set(slot MealSlot, m *Meal) {
	switch slot {
	case Lunch:
		d.Lunch = m
	case Dinner:
		d.Dinner = m
	}
}

// WeekPlan maps every week day to its cells.
type WeekPlan map[WeekDay]DayPlan

// NewWeekPlan returns a plan with seven empty days.
func NewWeekPlan() WeekPlan {
	plan := make(WeekPlan, len(WeekDays))
	for _, d := range WeekDays {
		plan[d] = DayPlan{}
	}
	return plan
}

// Clone returns a deep copy. Missing days are filled in empty.
func (p WeekPlan) Clone() WeekPlan {
	out := NewWeekPlan()
	for day, cells := range p {
		var copied DayPlan
		for _, slot := range MealSlots {
			if m := cells.Get(slot); m != nil {
				meal := *m
				copied.set(slot, &meal)
			}
		}
		out[day] = copied
	}
	return out
}

// Cell is a (day, slot) position holding a meal.
type Cell struct {
	Day  WeekDay
	Slot MealSlot
	Meal Meal
}

// Meals lists the assigned cells in week order, lunch before dinner.
// Only the given slots are included; no slots means all of them.
func (p WeekPlan) Meals(slots ...MealSlot) []Cell {
	if len(slots) == 0 {
		slots = MealSlots
	}
	var cells []Cell
	for _, day := range WeekDays {
		for _, slot := range MealSlots {
			if !slices.Contains(slots, slot) {
				continue
			}
			if m := p[day].Get(slot); m != nil {
				cells = append(cells, Cell{Day: day, Slot: slot, Meal: *m})
			}
		}
	}
	return cells
}
