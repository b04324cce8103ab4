package ingredient

import "slices"

// Field names reported on a CatalogUpdate.
const (
	FieldName     = "name"
	FieldCategory = "category"
	FieldAliases  = "aliases"
)

// CatalogUpdate is a proposed edit of a shared catalog entry, derived from an edited line item.
// Applying it changes the entry for every recipe that references it.
type CatalogUpdate struct {
	CatalogID    string     `json:"catalog_id"`
	Before       Ingredient `json:"before"`
	After        Ingredient `json:"after"`
	Fields       []string   `json:"fields"`
	ReferencedBy int        `json:"referenced_by"`
}

// ProposeUpdate compares a resolved line item with its catalog entry.
// Typing a known alias is not an edit; the name only counts as changed when it
// no longer refers to the entry at all.
func ProposeUpdate(entry Ingredient, line LineItem) (CatalogUpdate, bool) {
	after := Ingredient{
		ID:       entry.ID,
		Name:     entry.Name,
		Category: entry.Category,
		Aliases:  slices.Clone(entry.Aliases),
	}
	var fields []string

	if line.Name != "" && !Refers(entry, line.Name) {
		after.Name = line.Name
		fields = append(fields, FieldName)
	}
	if line.Category != entry.Category {
		after.Category = line.Category
		fields = append(fields, FieldCategory)
	}
	if !sameAliases(line.Aliases, entry.Aliases) {
		after.Aliases = slices.Clone(line.Aliases)
		fields = append(fields, FieldAliases)
	}

	if len(fields) == 0 {
		return CatalogUpdate{}, false
	}
	return CatalogUpdate{
		CatalogID: entry.ID,
		Before:    entry,
		After:     after,
		Fields:    fields,
	}, true
}

func sameAliases(a, b []string) bool {
	if len(a) == 0 && len(b) == 0 {
		return true
	}
	return slices.Equal(a, b)
}
