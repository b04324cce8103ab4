package metrics

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"meal-planner/internal/database"
)

// Operation names recorded by the app.
const (
	OpAnalyze   = "analyze"
	OpAggregate = "aggregate"
	OpImport    = "import"
	OpClip      = "clip"
)

// OperationMetric records one run of an engine operation.
type OperationMetric struct {
	Operation string
	Items     int
	LatencyMS int64
	Timestamp time.Time
}

// Since builds a metric for an operation that started at start.
func Since(operation string, items int, start time.Time) OperationMetric {
	return OperationMetric{
		Operation: operation,
		Items:     items,
		LatencyMS: time.Since(start).Milliseconds(),
		Timestamp: time.Now().UTC(),
	}
}

// Store handles persistence of metrics to SQLite.
type Store struct {
	db *sql.DB
}

// NewStore initializes the Store with an existing database connection.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Record saves a metric to the database.
func (s *Store) Record(ctx context.Context, m OperationMetric) error {
	ts := m.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO operation_metrics (operation, items, latency_ms, timestamp) VALUES (?, ?, ?, ?)`,
		m.Operation, m.Items, m.LatencyMS, database.FormatTime(ts))
	if err != nil {
		return fmt.Errorf("failed to record metric: %w", err)
	}
	return nil
}

// DailyUsage aggregates one operation over one day.
type DailyUsage struct {
	Date         string
	Operation    string
	Runs         int
	TotalItems   int
	AvgLatencyMS float64
}

// GetDailyUsage retrieves usage for the last N days, newest day first.
func (s *Store) GetDailyUsage(ctx context.Context, days int) ([]DailyUsage, error) {
	since := database.FormatTime(time.Now().AddDate(0, 0, -days))
	rows, err := s.db.QueryContext(ctx, `
		SELECT substr(timestamp, 1, 10) AS day, operation, COUNT(*), COALESCE(SUM(items), 0), COALESCE(AVG(latency_ms), 0)
		FROM operation_metrics
		WHERE timestamp >= ?
		GROUP BY day, operation
		ORDER BY day DESC, operation`, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query daily usage: %w", err)
	}
	defer rows.Close()

	results := []DailyUsage{}
	for rows.Next() {
		var u DailyUsage
		if err := rows.Scan(&u.Date, &u.Operation, &u.Runs, &u.TotalItems, &u.AvgLatencyMS); err != nil {
			return nil, fmt.Errorf("failed to scan daily usage: %w", err)
		}
		results = append(results, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate daily usage: %w", err)
	}
	return results, nil
}

// Cleanup removes records older than the specified number of days.
func (s *Store) Cleanup(ctx context.Context, olderThanDays int) (int64, error) {
	threshold := database.FormatTime(time.Now().AddDate(0, 0, -olderThanDays))
	res, err := s.db.ExecContext(ctx, `DELETE FROM operation_metrics WHERE timestamp < ?`, threshold)
	if err != nil {
		return 0, fmt.Errorf("failed to cleanup metrics: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return n, nil
}
