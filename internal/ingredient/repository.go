package ingredient

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"meal-planner/internal/database"

	"github.com/google/uuid"
)

// Repository is a database-backed store for the shared ingredient catalog.
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

// List loads the whole catalog ordered by id.
func (r *Repository) List(ctx context.Context) (Catalog, error) {
	rows, err := r.q.QueryContext(ctx, `SELECT id, data FROM ingredients ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list ingredients: %w", err)
	}
	defer rows.Close()

	catalog := Catalog{}
	for rows.Next() {
		var id, data string
		if err := rows.Scan(&id, &data); err != nil {
			return nil, fmt.Errorf("failed to scan ingredient: %w", err)
		}
		var ing Ingredient
		if err := json.Unmarshal([]byte(data), &ing); err != nil {
			return nil, fmt.Errorf("failed to unmarshal ingredient %s: %w", id, err)
		}
		ing.ID = id
		catalog = append(catalog, ing)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate ingredients: %w", err)
	}
	return catalog, nil
}

// Get retrieves a catalog entry by id.
func (r *Repository) Get(ctx context.Context, id string) (*Ingredient, error) {
	var data string
	err := r.q.QueryRowContext(ctx, `SELECT data FROM ingredients WHERE id = ?`, id).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get ingredient by ID: %w", err)
	}

	var ing Ingredient
	if err := json.Unmarshal([]byte(data), &ing); err != nil {
		return nil, fmt.Errorf("failed to unmarshal ingredient JSON: %w", err)
	}
	ing.ID = id
	return &ing, nil
}

// Create stores a new catalog entry and returns it with its id set.
func (r *Repository) Create(ctx context.Context, ing Ingredient) (Ingredient, error) {
	ing.ID = uuid.NewString()
	ing.Category = ParseCategory(string(ing.Category))

	data, err := json.Marshal(ing)
	if err != nil {
		return Ingredient{}, fmt.Errorf("failed to marshal ingredient: %w", err)
	}

	_, err = r.q.ExecContext(ctx,
		`INSERT INTO ingredients (id, name, data, updated_at) VALUES (?, ?, ?, ?)`,
		ing.ID, ing.Name, string(data), database.FormatTime(time.Now()))
	if err != nil {
		return Ingredient{}, fmt.Errorf("failed to insert ingredient: %w", err)
	}
	return ing, nil
}

// Update overwrites a catalog entry. Last write wins.
func (r *Repository) Update(ctx context.Context, ing Ingredient) error {
	ing.Category = ParseCategory(string(ing.Category))

	data, err := json.Marshal(ing)
	if err != nil {
		return fmt.Errorf("failed to marshal ingredient: %w", err)
	}

	res, err := r.q.ExecContext(ctx,
		`UPDATE ingredients SET name = ?, data = ?, updated_at = ? WHERE id = ?`,
		ing.Name, string(data), database.FormatTime(time.Now()), ing.ID)
	if err != nil {
		return fmt.Errorf("failed to update ingredient: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("failed to update ingredient %s: %w", ing.ID, ErrUnknownCatalogEntry)
	}
	return nil
}
