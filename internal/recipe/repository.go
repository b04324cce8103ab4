package recipe

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"meal-planner/internal/database"

	"github.com/google/uuid"
)

// Repository is a database-backed repository for recipes.
type Repository struct {
	q database.Querier
}

// NewRepository creates a new Repository.
func NewRepository(d *sql.DB) *Repository {
	return &Repository{q: d}
}

// WithTx returns a Repository that runs its queries inside tx.
func (r *Repository) WithTx(tx *sql.Tx) *Repository {
	return &Repository{q: tx}
}

// Save inserts or updates a recipe and returns it with its id and timestamp set.
func (r *Repository) Save(ctx context.Context, rec Recipe) (Recipe, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	rec.UpdatedAt = time.Now().UTC()

	recipeJSON, err := json.Marshal(rec)
	if err != nil {
		return Recipe{}, fmt.Errorf("failed to marshal recipe to JSON: %w", err)
	}

	_, err = r.q.ExecContext(ctx, `
		INSERT INTO recipes (id, owner_id, is_private, data, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			owner_id = excluded.owner_id,
			is_private = excluded.is_private,
			data = excluded.data,
			updated_at = excluded.updated_at`,
		rec.ID, rec.OwnerID, rec.IsPrivate, string(recipeJSON), database.FormatTime(rec.UpdatedAt))
	if err != nil {
		return Recipe{}, fmt.Errorf("failed to save recipe: %w", err)
	}
	return rec, nil
}

// Get retrieves a recipe by its ID.
func (r *Repository) Get(ctx context.Context, id string) (*Recipe, error) {
	var data string
	err := r.q.QueryRowContext(ctx, `SELECT data FROM recipes WHERE id = ?`, id).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Recipe not found
		}
		return nil, fmt.Errorf("failed to get recipe by ID: %w", err)
	}

	var rec Recipe
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal recipe JSON: %w", err)
	}
	return &rec, nil
}

// GetByIDs retrieves multiple recipes by their IDs. Unknown ids are silently absent.
func (r *Repository) GetByIDs(ctx context.Context, ids []string) ([]Recipe, error) {
	if len(ids) == 0 {
		return []Recipe{}, nil
	}

	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	query := `SELECT id, data FROM recipes WHERE id IN (?` + strings.Repeat(", ?", len(ids)-1) + `) ORDER BY id`

	return r.query(ctx, query, args...)
}

// List returns the recipes visible to userID, most recently updated first.
func (r *Repository) List(ctx context.Context, userID string, visibility Visibility) ([]Recipe, error) {
	if visibility == VisibilityOwn {
		return r.query(ctx,
			`SELECT id, data FROM recipes WHERE owner_id = ? ORDER BY updated_at DESC, id`, userID)
	}
	return r.query(ctx,
		`SELECT id, data FROM recipes WHERE is_private = 0 OR owner_id = ? ORDER BY updated_at DESC, id`, userID)
}

// CountReferences counts the recipes other than excludeID whose lines link to catalogID.
func (r *Repository) CountReferences(ctx context.Context, catalogID, excludeID string) (int, error) {
	var count int
	err := r.q.QueryRowContext(ctx, `
		SELECT COUNT(DISTINCT r.id)
		FROM recipes r, json_each(r.data, '$.analyzed_ingredients') line
		WHERE json_extract(line.value, '$.catalog_id') = ? AND r.id != ?`,
		catalogID, excludeID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count recipe references: %w", err)
	}
	return count, nil
}

// Count returns the number of recipes in the database.
func (r *Repository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM recipes`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count recipes: %w", err)
	}
	return count, nil
}

func (r *Repository) query(ctx context.Context, query string, args ...any) ([]Recipe, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list recipes: %w", err)
	}
	defer rows.Close()

	recipes := []Recipe{}
	for rows.Next() {
		var id, data string
		if err := rows.Scan(&id, &data); err != nil {
			return nil, fmt.Errorf("failed to scan recipe: %w", err)
		}
		var rec Recipe
		if err := json.Unmarshal([]byte(data), &rec); err != nil {
			return nil, fmt.Errorf("failed to unmarshal recipe JSON for ID %s: %w", id, err)
		}
		recipes = append(recipes, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate recipes: %w", err)
	}
	return recipes, nil
}
