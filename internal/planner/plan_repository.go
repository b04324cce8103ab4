package planner

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

// PlanRepository is a database-backed repository for week plan documents.
type PlanRepository struct {
	q database.Querier
}

// NewPlanRepository creates a new PlanRepository.
func NewPlanRepository(d *sql.DB) *PlanRepository {
	return &PlanRepository{q: d}
}

// WithTx returns a PlanRepository that runs its queries inside tx.
func (r *PlanRepository) WithTx(tx *sql.Tx) *PlanRepository {
	return &PlanRepository{q: tx}
}

// Current returns the user's current plan, or nil when there is none.
func (r *PlanRepository) Current(ctx context.Context, userID string) (*Document, error) {
	return r.one(ctx, `
		SELECT id, user_id, is_current, data, created_at FROM plans
		WHERE user_id = ? AND is_current = 1
		ORDER BY created_at DESC LIMIT 1`, userID)
}

// Previous returns the most recent superseded plan, or nil.
func (r *PlanRepository) Previous(ctx context.Context, userID string) (*Document, error) {
	return r.one(ctx, `
		SELECT id, user_id, is_current, data, created_at FROM plans
		WHERE user_id = ? AND is_current = 0
		ORDER BY created_at DESC LIMIT 1`, userID)
}

// ListRecentByUserID retrieves the N most recent plans for a given user, current one included.
func (r *PlanRepository) ListRecentByUserID(ctx context.Context, userID string, limit int) ([]Document, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT id, user_id, is_current, data, created_at FROM plans
		WHERE user_id = ?
		ORDER BY created_at DESC LIMIT ?`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent plans for user %s: %w", userID, err)
	}
	defer rows.Close()

	docs := []Document{}
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, *doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate plans: %w", err)
	}
	return docs, nil
}

// Insert stores a new plan document and returns it with id and creation time set.
func (r *PlanRepository) Insert(ctx context.Context, doc Document) (Document, error) {
	doc.ID = uuid.NewString()
	doc.CreatedAt = time.Now().UTC()

	data, err := json.Marshal(doc.Plan)
	if err != nil {
		return Document{}, fmt.Errorf("failed to marshal plan: %w", err)
	}
	_, err = r.q.ExecContext(ctx,
		`INSERT INTO plans (id, user_id, is_current, data, created_at) VALUES (?, ?, ?, ?, ?)`,
		doc.ID, doc.UserID, doc.IsCurrent, string(data), database.FormatTime(doc.CreatedAt))
	if err != nil {
		return Document{}, fmt.Errorf("failed to insert plan: %w", err)
	}
	return doc, nil
}

// UpdatePlan overwrites the cells of an existing document.
func (r *PlanRepository) UpdatePlan(ctx context.Context, id string, plan WeekPlan) error {
	data, err := json.Marshal(plan)
	if err != nil {
		return fmt.Errorf("failed to marshal plan: %w", err)
	}
	res, err := r.q.ExecContext(ctx, `UPDATE plans SET data = ? WHERE id = ?`, string(data), id)
	if err != nil {
		return fmt.Errorf("failed to update plan %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("failed to update plan %s: %w", id, ErrNoCurrentPlan)
	}
	return nil
}

// MarkNotCurrent turns every current plan of the user into history.
func (r *PlanRepository) MarkNotCurrent(ctx context.Context, userID string) error {
	_, err := r.q.ExecContext(ctx, `UPDATE plans SET is_current = 0 WHERE user_id = ? AND is_current = 1`, userID)
	if err != nil {
		return fmt.Errorf("failed to supersede plans for user %s: %w", userID, err)
	}
	return nil
}

func (r *PlanRepository) one(ctx context.Context, query string, args ...any) (*Document, error) {
	doc, err := scanDocument(r.q.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return doc, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanDocument(s scanner) (*Document, error) {
	var (
		doc       Document
		data      string
		createdAt string
	)
	if err := s.Scan(&doc.ID, &doc.UserID, &doc.IsCurrent, &data, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan plan: %w", err)
	}
	if err := json.Unmarshal([]byte(data), &doc.Plan); err != nil {
		return nil, fmt.Errorf("failed to unmarshal plan %s: %w", doc.ID, err)
	}
	doc.Plan = doc.Plan.Clone()

	t, err := database.ParseTime(createdAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse plan timestamp: %w", err)
	}
	doc.CreatedAt = t
	return &doc, nil
}
