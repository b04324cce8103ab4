package recipe

import (
	"context"
	"path/filepath"
	"testing"

	"meal-planner/internal/database"
	"meal-planner/internal/ingredient"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRepository(t *testing.T) {
	ctx := context.Background()
	db, err := database.NewDB(filepath.Join(t.TempDir(), "recipes.db"), zap.NewNop())
	require.NoError(t, err)
	defer db.Close()
	repo := NewRepository(db.SQL)

	soup, err := repo.Save(ctx, Recipe{
		Name:     "Tomatensuppe",
		Servings: 2,
		OwnerID:  "alice",
		AnalyzedIngredients: []ingredient.LineItem{
			{LocalID: "a", CatalogID: "ing-tomato", Name: "Tomate", Amount: "500g"},
		},
	})
	require.NoError(t, err)
	require.NotEmpty(t, soup.ID)
	assert.False(t, soup.UpdatedAt.IsZero())

	_, err = repo.Save(ctx, Recipe{
		Name:      "Omas Sauce",
		Servings:  4,
		OwnerID:   "alice",
		IsPrivate: true,
		AnalyzedIngredients: []ingredient.LineItem{
			{LocalID: "b", CatalogID: "ing-tomato", Name: "Tomaten", Amount: "1kg"},
			{LocalID: "c", CatalogID: "ing-tomato", Name: "Tomate", Amount: "2"},
		},
	})
	require.NoError(t, err)

	salad, err := repo.Save(ctx, Recipe{Name: "Salat", Servings: 1, OwnerID: "bob"})
	require.NoError(t, err)

	t.Run("Get", func(t *testing.T) {
		got, err := repo.Get(ctx, soup.ID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "Tomatensuppe", got.Name)
		assert.Equal(t, "500g", got.AnalyzedIngredients[0].Amount)

		missing, err := repo.Get(ctx, "missing")
		require.NoError(t, err)
		assert.Nil(t, missing)
	})

	t.Run("SaveUpdatesExisting", func(t *testing.T) {
		soup.Servings = 3
		_, err := repo.Save(ctx, soup)
		require.NoError(t, err)

		got, err := repo.Get(ctx, soup.ID)
		require.NoError(t, err)
		assert.Equal(t, 3, got.Servings)

		count, err := repo.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 3, count)
	})

	t.Run("GetByIDs", func(t *testing.T) {
		got, err := repo.GetByIDs(ctx, []string{soup.ID, "missing", salad.ID})
		require.NoError(t, err)
		assert.Len(t, got, 2)

		none, err := repo.GetByIDs(ctx, nil)
		require.NoError(t, err)
		assert.Empty(t, none)
	})

	t.Run("ListVisibility", func(t *testing.T) {
		own, err := repo.List(ctx, "bob", VisibilityOwn)
		require.NoError(t, err)
		require.Len(t, own, 1)
		assert.Equal(t, salad.ID, own[0].ID)

		all, err := repo.List(ctx, "bob", VisibilityAll)
		require.NoError(t, err)
		assert.Len(t, all, 2, "alice's private recipe stays hidden")

		mine, err := repo.List(ctx, "alice", VisibilityAll)
		require.NoError(t, err)
		assert.Len(t, mine, 3)
	})

	t.Run("CountReferences", func(t *testing.T) {
		n, err := repo.CountReferences(ctx, "ing-tomato", soup.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, n)

		n, err = repo.CountReferences(ctx, "ing-tomato", "")
		require.NoError(t, err)
		assert.Equal(t, 2, n)
	})
}
