package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"meal-planner/internal/clipper"
	"meal-planner/internal/ingredient"
	"meal-planner/internal/metrics"
	"meal-planner/internal/recipe"
)

// ImportReport counts the outcome of a blog import.
type ImportReport struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
	Failed   int `json:"failed"`
}

// ImportGhost turns every blog post with an ingredient list into a recipe owned by ownerID.
// Posts keep a stable recipe id, so importing again refreshes the same recipes.
func (a *App) ImportGhost(ctx context.Context, ownerID string) (ImportReport, error) {
	if a.posts == nil {
		return ImportReport{}, ErrNotConfigured
	}
	start := time.Now()

	posts, err := a.posts.FetchRecipes(ctx)
	if err != nil {
		return ImportReport{}, fmt.Errorf("failed to fetch recipes from ghost: %w", err)
	}
	a.log.Info("fetched recipe posts", zap.Int("posts", len(posts)))

	var report ImportReport
	for _, post := range posts {
		log := a.log.With(zap.String("post_id", post.ID), zap.String("title", post.Title))

		lines, err := clipper.ExtractIngredients(post.HTML)
		if err != nil {
			log.Warn("failed to read post", zap.Error(err))
			report.Failed++
			continue
		}
		if len(lines) == 0 {
			log.Debug("post has no ingredient list")
			report.Skipped++
			continue
		}

		items, err := a.Analyze(ctx, clipper.Page{Ingredients: lines}.IngredientText())
		if err != nil {
			return report, err
		}
		_, err = a.SaveRecipe(ctx, ownerID, recipe.Recipe{
			ID:                  "ghost-" + post.ID,
			Name:                post.Title,
			Link:                post.URL,
			ImageURL:            post.FeatureImage,
			Servings:            a.defaultServings,
			AnalyzedIngredients: items,
		})
		if err != nil {
			if errors.Is(err, ErrForbidden) || errors.Is(err, ErrInvalidInput) {
				log.Warn("post not imported", zap.Error(err))
				report.Failed++
				continue
			}
			return report, err
		}
		report.Imported++
	}

	a.record(ctx, metrics.Since(metrics.OpImport, report.Imported, start))
	a.log.Info("import finished",
		zap.Int("imported", report.Imported),
		zap.Int("skipped", report.Skipped),
		zap.Int("failed", report.Failed))
	return report, nil
}

// ClipResult is a web page's recipe data with its analyzed ingredient lines.
type ClipResult struct {
	Page  clipper.Page          `json:"page"`
	Items []ingredient.LineItem `json:"items"`
}

// Draft returns an unsaved recipe built from the clipped page.
func (c ClipResult) Draft(defaultServings int) recipe.Recipe {
	servings := c.Page.Servings
	if servings <= 0 {
		servings = defaultServings
	}
	return recipe.Recipe{
		Name:                c.Page.Title,
		Link:                c.Page.URL,
		ImageURL:            c.Page.ImageURL,
		Servings:            servings,
		AnalyzedIngredients: c.Items,
	}
}

// ClipRecipe fetches a recipe page and analyzes its ingredient lines without saving anything.
func (a *App) ClipRecipe(ctx context.Context, url string) (ClipResult, error) {
	if a.clipper == nil {
		return ClipResult{}, ErrNotConfigured
	}
	start := time.Now()

	page, err := a.clipper.ClipURL(ctx, url)
	if err != nil {
		return ClipResult{}, fmt.Errorf("failed to clip recipe: %w", err)
	}
	items, err := a.Analyze(ctx, page.IngredientText())
	if err != nil {
		return ClipResult{}, err
	}

	a.record(ctx, metrics.Since(metrics.OpClip, len(items), start))
	return ClipResult{Page: *page, Items: items}, nil
}

// DefaultServings is the serving count used when neither the user nor the recipe sets one.
func (a *App) DefaultServings() int {
	return a.defaultServings
}
