package ingredient

import (
	"context"
	"path/filepath"
	"testing"

	"meal-planner/internal/database"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestDB(t *testing.T) *database.DB {
	t.Helper()
	db, err := database.NewDB(filepath.Join(t.TempDir(), "catalog.db"), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(newTestDB(t).SQL)

	t.Run("CreateAndGet", func(t *testing.T) {
		created, err := repo.Create(ctx, Ingredient{Name: "Tomate", Category: CategoryVegetables, Aliases: []string{"Tomaten"}})
		require.NoError(t, err)
		require.NotEmpty(t, created.ID)

		got, err := repo.Get(ctx, created.ID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, created, *got)
	})

	t.Run("UnknownCategoryNormalized", func(t *testing.T) {
		created, err := repo.Create(ctx, Ingredient{Name: "Safran", Category: "Spices"})
		require.NoError(t, err)
		assert.Equal(t, CategoryOthers, created.Category)
	})

	t.Run("GetMissing", func(t *testing.T) {
		got, err := repo.Get(ctx, "missing")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("ListOrderedByID", func(t *testing.T) {
		catalog, err := repo.List(ctx)
		require.NoError(t, err)
		require.Len(t, catalog, 2)
		assert.Less(t, catalog[0].ID, catalog[1].ID)
	})

	t.Run("Update", func(t *testing.T) {
		created, err := repo.Create(ctx, Ingredient{Name: "Milch", Category: CategoryDairy})
		require.NoError(t, err)

		created.Aliases = []string{"Vollmilch"}
		require.NoError(t, repo.Update(ctx, created))

		got, err := repo.Get(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{"Vollmilch"}, got.Aliases)
	})

	t.Run("UpdateUnknown", func(t *testing.T) {
		err := repo.Update(ctx, Ingredient{ID: "nope", Name: "x"})
		assert.ErrorIs(t, err, ErrUnknownCatalogEntry)
	})
}
