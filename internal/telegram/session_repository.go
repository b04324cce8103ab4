package telegram

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"meal-planner/internal/database"
)

// SessionClip holds a clipped recipe waiting for /save.
const SessionClip = "clip"

// Session is short-lived conversation state, such as a clipped recipe awaiting confirmation.
type Session struct {
	ID          int64
	UserID      string
	SessionType string
	Data        string
	ExpiresAt   time.Time
	CreatedAt   time.Time
}

// Decode unmarshals the session payload into v.
func (s *Session) Decode(v any) error {
	if err := json.Unmarshal([]byte(s.Data), v); err != nil {
		return fmt.Errorf("failed to decode session data: %w", err)
	}
	return nil
}

// SessionRepository provides access to session persistence operations.
type SessionRepository struct {
	q database.Querier
}

// NewSessionRepository creates a new SessionRepository.
func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{q: db}
}

// Create stores a session that expires after ttl and returns its id.
func (r *SessionRepository) Create(ctx context.Context, userID, sessionType string, data any, ttl time.Duration) (int64, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal session data: %w", err)
	}

	now := time.Now()
	res, err := r.q.ExecContext(ctx, `
		INSERT INTO telegram_sessions (user_id, session_type, data, expires_at, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		userID, sessionType, string(payload), database.FormatTime(now.Add(ttl)), database.FormatTime(now))
	if err != nil {
		return 0, fmt.Errorf("failed to create session: %w", err)
	}
	return res.LastInsertId()
}

// GetActive returns the user's most recent unexpired session of the given type, or nil.
func (r *SessionRepository) GetActive(ctx context.Context, userID, sessionType string, now time.Time) (*Session, error) {
	var s Session
	var expiresAt, createdAt string
	err := r.q.QueryRowContext(ctx, `
		SELECT id, user_id, session_type, data, expires_at, created_at FROM telegram_sessions
		WHERE user_id = ? AND session_type = ? AND expires_at > ?
		ORDER BY created_at DESC, id DESC LIMIT 1`,
		userID, sessionType, database.FormatTime(now)).
		Scan(&s.ID, &s.UserID, &s.SessionType, &s.Data, &expiresAt, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get session for user %s: %w", userID, err)
	}

	if s.ExpiresAt, err = database.ParseTime(expiresAt); err != nil {
		return nil, fmt.Errorf("failed to parse session expiry: %w", err)
	}
	if s.CreatedAt, err = database.ParseTime(createdAt); err != nil {
		return nil, fmt.Errorf("failed to parse session creation time: %w", err)
	}
	return &s, nil
}

// Delete removes a session.
func (r *SessionRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.q.ExecContext(ctx, `DELETE FROM telegram_sessions WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete session %d: %w", id, err)
	}
	return nil
}

// DeleteForUser removes every session of the given type for a user.
func (r *SessionRepository) DeleteForUser(ctx context.Context, userID, sessionType string) error {
	_, err := r.q.ExecContext(ctx,
		`DELETE FROM telegram_sessions WHERE user_id = ? AND session_type = ?`, userID, sessionType)
	if err != nil {
		return fmt.Errorf("failed to delete sessions for user %s: %w", userID, err)
	}
	return nil
}

// CleanupExpired removes all sessions that expired before now.
func (r *SessionRepository) CleanupExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.q.ExecContext(ctx, `DELETE FROM telegram_sessions WHERE expires_at <= ?`, database.FormatTime(now))
	if err != nil {
		return 0, fmt.Errorf("failed to clean up sessions: %w", err)
	}
	return res.RowsAffected()
}
