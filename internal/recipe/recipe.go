package recipe

import (
	"errors"
	"slices"
	"strings"
	"time"

	"meal-planner/internal/ingredient"
)

// ErrNotFound is returned when a recipe id does not exist.
var ErrNotFound = errors.New("recipe not found")

// Recipe is a user's recipe with its analyzed ingredient list.
// Ingredient amounts are written for Servings people.
type Recipe struct {
	ID                  string                `json:"id"`
	Name                string                `json:"name"`
	Description         string                `json:"description,omitempty"`
	Link                string                `json:"link,omitempty"`
	Servings            int                   `json:"servings"`
	AnalyzedIngredients []ingredient.LineItem `json:"analyzed_ingredients"`
	ImageURL            string                `json:"image_url,omitempty"`
	PDFURL              string                `json:"pdf_url,omitempty"`
	OwnerID             string                `json:"owner_id"`
	IsPrivate           bool                  `json:"is_private"`
	Categories          []string              `json:"categories,omitempty"`
	UpdatedAt           time.Time             `json:"updated_at"`
}

// Visibility selects which recipes a listing returns.
type Visibility string

const (
	// VisibilityOwn lists only the user's recipes.
	VisibilityOwn Visibility = "own"
	// VisibilityAll lists public recipes plus the user's private ones.
	VisibilityAll Visibility = "all"
	// VisibilityFavorites lists the visible recipes the user marked as favorite.
	VisibilityFavorites Visibility = "favorites"
)

// Filter narrows a recipe listing.
type Filter struct {
	Visibility Visibility
	// Search matches the name, the description or any ingredient name, ignoring case.
	Search string
	// Categories must all be present on a recipe.
	Categories []string
}

// Match reports whether rec passes the search and category parts of f.
func (f Filter) Match(rec Recipe) bool {
	for _, want := range f.Categories {
		if !slices.ContainsFunc(rec.Categories, func(c string) bool { return strings.EqualFold(c, want) }) {
			return false
		}
	}

	term := ingredient.FoldName(f.Search)
	if term == "" {
		return true
	}
	if strings.Contains(ingredient.FoldName(rec.Name), term) ||
		strings.Contains(ingredient.FoldName(rec.Description), term) {
		return true
	}
	return slices.ContainsFunc(rec.AnalyzedIngredients, func(line ingredient.LineItem) bool {
		return strings.Contains(ingredient.FoldName(line.Name), term)
	})
}

// Apply returns the recipes of list that match f, keeping their order.
func (f Filter) Apply(list []Recipe) []Recipe {
	out := make([]Recipe, 0, len(list))
	for _, rec := range list {
		if f.Match(rec) {
			out = append(out, rec)
		}
	}
	return out
}

// NewEntry is a catalog entry to create on save, shared by every line that typed the same name.
type NewEntry struct {
	LocalIDs   []string              `json:"local_ids"`
	Ingredient ingredient.Ingredient `json:"ingredient"`
}

// SavePlan lists the catalog writes a recipe save implies.
// New entries are created as part of the save; proposed updates change shared
// entries and are only applied on explicit request.
type SavePlan struct {
	NewEntries      []NewEntry                 `json:"new_entries"`
	ProposedUpdates []ingredient.CatalogUpdate `json:"proposed_updates"`
}

// PrepareSave compares a recipe's lines with the catalog without writing anything.
// Lines without a name, or linked to an id the catalog does not know, produce nothing.
func PrepareSave(r Recipe, catalog ingredient.Catalog) SavePlan {
	plan := SavePlan{
		NewEntries:      []NewEntry{},
		ProposedUpdates: []ingredient.CatalogUpdate{},
	}
	byID := catalog.ByID()
	pending := make(map[string]int)
	proposed := make(map[string]bool)

	for _, line := range r.AnalyzedIngredients {
		if line.IsNew() {
			key := ingredient.FoldName(line.Name)
			if key == "" {
				continue
			}
			if i, ok := pending[key]; ok {
				plan.NewEntries[i].LocalIDs = append(plan.NewEntries[i].LocalIDs, line.LocalID)
				continue
			}
			pending[key] = len(plan.NewEntries)
			plan.NewEntries = append(plan.NewEntries, NewEntry{
				LocalIDs:   []string{line.LocalID},
				Ingredient: line.CatalogCandidate(),
			})
			continue
		}

		entry, ok := byID[line.CatalogID]
		if !ok || proposed[line.CatalogID] {
			continue
		}
		if update, changed := ingredient.ProposeUpdate(entry, line); changed {
			proposed[line.CatalogID] = true
			plan.ProposedUpdates = append(plan.ProposedUpdates, update)
		}
	}
	return plan
}

// LinkCatalog returns a copy of r with catalog ids filled in for the given local ids.
func LinkCatalog(r Recipe, ids map[string]string) Recipe {
	lines := make([]ingredient.LineItem, len(r.AnalyzedIngredients))
	for i, line := range r.AnalyzedIngredients {
		if id, ok := ids[line.LocalID]; ok && line.IsNew() {
			line.CatalogID = id
		}
		lines[i] = line
	}
	r.AnalyzedIngredients = lines
	return r
}
