package store

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// pingTimeout bounds the startup connectivity check so a wrong DATABASE_URL
// fails the process quickly instead of hanging on a dial.
const pingTimeout = 5 * time.Second

// DB is the Postgres connection pool behind the attendance store.
type DB struct {
	Client *sql.DB
}

// NewDB opens a Postgres pool sized to maxConns and verifies connectivity
// before returning, so storage misconfiguration surfaces at startup rather
// than on the first calendar request. The pool is closed on a failed ping.
func NewDB(connString string, maxConns int) (*DB, error) {
	db, err := sql.Open("pgx", connString)
	if err != nil {
		return nil, err
	}
	if maxConns <= 0 {
		maxConns = 10
	}
	db.SetMaxOpenConns(maxConns)
	db.SetMaxIdleConns((maxConns + 1) / 2)
	db.SetConnMaxLifetime(time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &DB{Client: db}, nil
}

// Close closes the underlying pool.
func (d *DB) Close() error {
	if d == nil || d.Client == nil {
		return nil
	}
	return d.Client.Close()
}
