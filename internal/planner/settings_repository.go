package planner

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"meal-planner/internal/database"
)

// SettingsRepository stores per-user planning settings.
type SettingsRepository struct {
	q database.Querier
}

// NewSettingsRepository creates a new SettingsRepository.
func NewSettingsRepository(d *sql.DB) *SettingsRepository {
	return &SettingsRepository{q: d}
}

// WithTx returns a SettingsRepository that runs its queries inside tx.
func (r *SettingsRepository) WithTx(tx *sql.Tx) *SettingsRepository {
	return &SettingsRepository{q: tx}
}

// Get returns the stored settings, or nil if the user never saved any.
func (r *SettingsRepository) Get(ctx context.Context, userID string) (*Settings, error) {
	var data string
	err := r.q.QueryRowContext(ctx, `SELECT data FROM user_settings WHERE user_id = ?`, userID).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get settings for user %s: %w", userID, err)
	}

	var s Settings
	if err := json.Unmarshal([]byte(data), &s); err != nil {
		return nil, fmt.Errorf("failed to unmarshal settings JSON: %w", err)
	}
	s.UserID = userID
	return &s, nil
}

// Save upserts the settings of s.UserID.
func (r *SettingsRepository) Save(ctx context.Context, s Settings) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}
	_, err = r.q.ExecContext(ctx, `
		INSERT INTO user_settings (user_id, data, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		s.UserID, string(data), database.FormatTime(time.Now()))
	if err != nil {
		return fmt.Errorf("failed to save settings for user %s: %w", s.UserID, err)
	}
	return nil
}
