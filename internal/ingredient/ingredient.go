package ingredient

import (
	"errors"
	"slices"
)

// ErrUnknownCatalogEntry is returned when an update targets a catalog id that does not exist.
var ErrUnknownCatalogEntry = errors.New("unknown catalog entry")

// Category groups ingredients on the shopping list.
type Category string

const (
	CategoryVegetables Category = "Vegetables"
	CategoryMeat       Category = "Meat"
	CategoryDairy      Category = "Dairy"
	CategoryGrain      Category = "Grain"
	CategoryOthers     Category = "Others"
)

// Categories lists every category in display order.
var Categories = []Category{
	CategoryVegetables,
	CategoryMeat,
	CategoryDairy,
	CategoryGrain,
	CategoryOthers,
}

// ParseCategory maps a raw value to a known category, falling back to Others.
func ParseCategory(s string) Category {
	c := Category(s)
	if slices.Contains(Categories, c) {
		return c
	}
	return CategoryOthers
}

// Ingredient is a canonical catalog entry shared by all recipes.
type Ingredient struct {
	ID       string   `json:"id,omitempty"`
	Name     string   `json:"name"`
	Category Category `json:"category"`
	Aliases  []string `json:"aliases,omitempty"`
}

// LineItem is one ingredient line of a recipe.
// LocalID only identifies the line within one analysis and is never used for lookups.
type LineItem struct {
	LocalID   string   `json:"local_id"`
	CatalogID string   `json:"catalog_id,omitempty"`
	Name      string   `json:"name"`
	Amount    string   `json:"amount"`
	Category  Category `json:"category"`
	Aliases   []string `json:"aliases,omitempty"`
}

// IsNew reports whether the line is not linked to a catalog entry yet.
func (l LineItem) IsNew() bool {
	return l.CatalogID == ""
}

// CatalogCandidate returns the catalog entry this line would create if saved as new.
func (l LineItem) CatalogCandidate() Ingredient {
	return Ingredient{
		Name:     l.Name,
		Category: l.Category,
		Aliases:  slices.Clone(l.Aliases),
	}
}

// Catalog is a loaded snapshot of the ingredient catalog.
type Catalog []Ingredient

// ByID indexes the catalog by id. Entries without an id are left out.
func (c Catalog) ByID() map[string]Ingredient {
	index := make(map[string]Ingredient, len(c))
	for _, ing := range c {
		if ing.ID == "" {
			continue
		}
		index[ing.ID] = ing
	}
	return index
}
