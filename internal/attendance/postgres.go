package attendance

import (
	"context"
	"database/sql"
	"time"
)

// PostgresStore persists attendance records in Postgres. Per-date atomicity
// comes from the database's ON CONFLICT upsert; concurrent writes to
// different dates do not block each other.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a store on an open connection pool.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// EnsureSchema creates the attendance table if it does not exist.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS attendance (
			date       date PRIMARY KEY,
			status     text NOT NULL,
			reason     text NOT NULL DEFAULT '',
			updated_at timestamptz NOT NULL DEFAULT NOW()
		)
	`)
	return err
}

// GetRange returns stored entries for dates in [start, end).
func (s *PostgresStore) GetRange(ctx context.Context, start, end time.Time) (map[string]Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT date, status, reason
		FROM attendance
		WHERE date >= $1 AND date < $2
	`, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	res := make(map[string]Entry)
	for rows.Next() {
		var day time.Time
		var e Entry
		if err := rows.Scan(&day, &e.Status, &e.Reason); err != nil {
			return nil, err
		}
		res[day.Format(DateFormat)] = e
	}
	return res, rows.Err()
}

// Upsert writes or deletes the record for date.
func (s *PostgresStore) Upsert(ctx context.Context, date string, status Status, reason string) error {
	if status == StatusNone {
		_, err := s.db.ExecContext(ctx, `DELETE FROM attendance WHERE date = $1`, date)
		return err
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO attendance (date, status, reason)
		VALUES ($1, $2, $3)
		ON CONFLICT (date) DO UPDATE SET
			status     = EXCLUDED.status,
			reason     = EXCLUDED.reason,
			updated_at = NOW()
	`, date, status, reason)
	return err
}

// Close is a no-op: the connection pool is owned by the caller.
func (s *PostgresStore) Close() error { return nil }
