package ingredient

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProposeUpdate(t *testing.T) {
	entry := Ingredient{ID: "ing-tomato", Name: "Tomate", Category: CategoryVegetables, Aliases: []string{"Tomaten"}}

	t.Run("unchanged line", func(t *testing.T) {
		line := LineItem{CatalogID: entry.ID, Name: "tomate", Category: CategoryVegetables, Aliases: []string{"Tomaten"}}
		_, ok := ProposeUpdate(entry, line)
		assert.False(t, ok)
	})

	t.Run("typing an alias is not an edit", func(t *testing.T) {
		line := LineItem{CatalogID: entry.ID, Name: "Tomaten", Category: CategoryVegetables, Aliases: []string{"Tomaten"}}
		_, ok := ProposeUpdate(entry, line)
		assert.False(t, ok)
	})

	t.Run("category and aliases edited", func(t *testing.T) {
		line := LineItem{CatalogID: entry.ID, Name: "Tomate", Category: CategoryOthers, Aliases: []string{"Tomaten", "Paradeiser"}}
		update, ok := ProposeUpdate(entry, line)
		require.True(t, ok)
		assert.Equal(t, []string{FieldCategory, FieldAliases}, update.Fields)
		assert.Equal(t, entry, update.Before)
		assert.Equal(t, "Tomate", update.After.Name)
		assert.Equal(t, CategoryOthers, update.After.Category)
		assert.Equal(t, []string{"Tomaten", "Paradeiser"}, update.After.Aliases)
	})

	t.Run("renamed", func(t *testing.T) {
		line := LineItem{CatalogID: entry.ID, Name: "Kirschtomate", Category: CategoryVegetables, Aliases: []string{"Tomaten"}}
		update, ok := ProposeUpdate(entry, line)
		require.True(t, ok)
		assert.Equal(t, []string{FieldName}, update.Fields)
		assert.Equal(t, "Kirschtomate", update.After.Name)
	})

	t.Run("nil and empty aliases are equal", func(t *testing.T) {
		bare := Ingredient{ID: "x", Name: "Salz", Category: CategoryOthers}
		line := LineItem{CatalogID: "x", Name: "Salz", Category: CategoryOthers, Aliases: []string{}}
		_, ok := ProposeUpdate(bare, line)
		assert.False(t, ok)
	})
}
