package ingredient

import (
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Resolver matches free-text ingredient names against a catalog snapshot.
type Resolver struct {
	index map[string]Ingredient
}

// NewResolver indexes the catalog by folded name and aliases.
// When several entries share a name or alias the one with the lowest id wins.
func NewResolver(catalog Catalog) *Resolver {
	r := &Resolver{index: make(map[string]Ingredient)}
	for _, ing := range catalog {
		r.add(ing.Name, ing)
		for _, alias := range ing.Aliases {
			r.add(alias, ing)
		}
	}
	return r
}

func (r *Resolver) add(name string, ing Ingredient) {
	key := FoldName(name)
	if key == "" {
		return
	}
	if existing, ok := r.index[key]; ok && !lowerID(ing.ID, existing.ID) {
		return
	}
	r.index[key] = ing
}

// Lookup returns the catalog entry a name refers to.
func (r *Resolver) Lookup(name string) (Ingredient, bool) {
	key := FoldName(name)
	if key == "" {
		return Ingredient{}, false
	}
	ing, ok := r.index[key]
	return ing, ok
}

// Resolve builds a line item for name and amount, linked to the catalog when the name is known.
// The line keeps the name as typed; only id, category and aliases come from the catalog.
func (r *Resolver) Resolve(name, amount string) LineItem {
	item := LineItem{
		Name:     name,
		Amount:   amount,
		Category: CategoryOthers,
		Aliases:  []string{},
	}
	if ing, ok := r.Lookup(name); ok {
		item.CatalogID = ing.ID
		item.Category = ing.Category
		if ing.Aliases != nil {
			item.Aliases = slices.Clone(ing.Aliases)
		}
	}
	return item
}

// Refers reports whether name is the canonical name or one of the aliases of ing.
func Refers(ing Ingredient, name string) bool {
	key := FoldName(name)
	if key == "" {
		return false
	}
	if FoldName(ing.Name) == key {
		return true
	}
	for _, alias := range ing.Aliases {
		if FoldName(alias) == key {
			return true
		}
	}
	return false
}

// FoldName is the comparison key for names and aliases: trimmed, NFC-normalized, case-folded.
func FoldName(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	return cases.Fold().String(norm.NFC.String(s))
}

// lowerID orders catalog ids; an empty id never beats a persisted one.
func lowerID(a, b string) bool {
	switch {
	case a == "":
		return false
	case b == "":
		return true
	default:
		return a < b
	}
}
