package app

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"meal-planner/internal/ingredient"
	"meal-planner/internal/recipe"
	"meal-planner/internal/storage"
)

// SaveResult is a saved recipe plus the catalog edits its lines imply.
type SaveResult struct {
	Recipe          recipe.Recipe              `json:"recipe"`
	ProposedUpdates []ingredient.CatalogUpdate `json:"proposed_updates"`
}

// SaveRecipe stores a recipe owned by userID.
// Lines with no catalog entry get one, created in the same transaction as the
// recipe. Edits to existing entries are returned as proposals and not applied.
func (a *App) SaveRecipe(ctx context.Context, userID string, rec recipe.Recipe) (SaveResult, error) {
	if strings.TrimSpace(rec.Name) == "" {
		return SaveResult{}, fmt.Errorf("%w: recipe name is required", ErrInvalidInput)
	}
	if rec.Servings <= 0 {
		return SaveResult{}, fmt.Errorf("%w: servings must be positive", ErrInvalidInput)
	}

	if rec.ID != "" {
		existing, err := a.recipes.Get(ctx, rec.ID)
		if err != nil {
			return SaveResult{}, fmt.Errorf("failed to load recipe: %w", err)
		}
		if existing != nil && existing.OwnerID != userID {
			return SaveResult{}, ErrForbidden
		}
	}
	rec.OwnerID = userID

	var result SaveResult
	err := a.db.WithTx(ctx, func(tx *sql.Tx) error {
		catalogRepo := a.catalog.WithTx(tx)
		recipeRepo := a.recipes.WithTx(tx)

		catalog, err := catalogRepo.List(ctx)
		if err != nil {
			return err
		}
		plan := recipe.PrepareSave(rec, catalog)

		ids := make(map[string]string)
		for _, entry := range plan.NewEntries {
			created, err := catalogRepo.Create(ctx, entry.Ingredient)
			if err != nil {
				return err
			}
			for _, localID := range entry.LocalIDs {
				ids[localID] = created.ID
			}
		}

		saved, err := recipeRepo.Save(ctx, recipe.LinkCatalog(rec, ids))
		if err != nil {
			return err
		}

		for i, u := range plan.ProposedUpdates {
			n, err := recipeRepo.CountReferences(ctx, u.CatalogID, saved.ID)
			if err != nil {
				return err
			}
			plan.ProposedUpdates[i].ReferencedBy = n
		}

		result = SaveResult{Recipe: saved, ProposedUpdates: plan.ProposedUpdates}
		a.log.Info("recipe saved",
			zap.String("recipe_id", saved.ID),
			zap.String("user_id", userID),
			zap.Int("new_entries", len(plan.NewEntries)),
			zap.Int("proposed_updates", len(plan.ProposedUpdates)))
		return nil
	})
	if err != nil {
		return SaveResult{}, fmt.Errorf("failed to save recipe: %w", err)
	}

	a.clearCache(ctx)
	return result, nil
}

// GetRecipe returns a recipe visible to userID.
// Private recipes of other users are reported as not found.
func (a *App) GetRecipe(ctx context.Context, userID, id string) (recipe.Recipe, error) {
	rec, err := a.recipes.Get(ctx, id)
	if err != nil {
		return recipe.Recipe{}, fmt.Errorf("failed to load recipe: %w", err)
	}
	if rec == nil || (rec.IsPrivate && rec.OwnerID != userID) {
		return recipe.Recipe{}, recipe.ErrNotFound
	}
	return *rec, nil
}

// ListRecipes lists the recipes the user can see, narrowed by f.
// An empty visibility lists every visible recipe.
func (a *App) ListRecipes(ctx context.Context, userID string, f recipe.Filter) ([]recipe.Recipe, error) {
	var (
		recipes []recipe.Recipe
		err     error
	)
	switch f.Visibility {
	case "", recipe.VisibilityAll:
		recipes, err = a.recipes.List(ctx, userID, recipe.VisibilityAll)
	case recipe.VisibilityOwn:
		recipes, err = a.recipes.List(ctx, userID, recipe.VisibilityOwn)
	case recipe.VisibilityFavorites:
		settings, serr := a.Settings(ctx, userID)
		if serr != nil {
			return nil, serr
		}
		recipes, err = a.visibleRecipes(ctx, userID, settings.FavoriteRecipes)
	default:
		return nil, fmt.Errorf("%w: unknown filter %q", ErrInvalidInput, f.Visibility)
	}
	if err != nil {
		return nil, err
	}
	return f.Apply(recipes), nil
}

// SaveAttachment stores a recipe image or document and returns its reference.
func (a *App) SaveAttachment(ctx context.Context, filename string, r io.Reader) (string, error) {
	if a.attachments == nil {
		return "", ErrNotConfigured
	}
	ref, err := a.attachments.Save(ctx, filename, r)
	if err != nil {
		return "", fmt.Errorf("failed to store attachment: %w", err)
	}
	return ref, nil
}

// OpenAttachment returns a locally stored attachment for reading.
// Attachments uploaded to Ghost are served by Ghost and give ErrNotConfigured.
func (a *App) OpenAttachment(ctx context.Context, ref string) (io.ReadCloser, error) {
	files, err := a.localAttachments(ref)
	if err != nil {
		return nil, err
	}
	return files.Open(ref)
}

// DeleteAttachment removes a locally stored attachment.
func (a *App) DeleteAttachment(ctx context.Context, ref string) error {
	files, err := a.localAttachments(ref)
	if err != nil {
		return err
	}
	if err := files.Remove(ref); err != nil {
		return err
	}
	a.log.Info("attachment removed", zap.String("ref", ref))
	return nil
}

// localAttachments checks ref against the local store.
func (a *App) localAttachments(ref string) (LocalAttachments, error) {
	files, ok := a.attachments.(LocalAttachments)
	if !ok {
		return nil, ErrNotConfigured
	}
	if err := storage.CheckReference(ref); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if !files.Exists(ref) {
		return nil, ErrAttachmentNotFound
	}
	return files, nil
}
