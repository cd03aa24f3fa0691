package attendance

import (
	"context"
	"time"
)

// Store persists attendance records keyed by calendar date. Implementations
// must make Upsert atomic per date and must treat StatusNone as deletion.
// Validation is the caller's job: Store trusts date and status are valid.
type Store interface {
	// GetRange returns the entries for dates in [start, end), keyed by the
	// ISO date string. Dates without a record are absent from the result.
	GetRange(ctx context.Context, start, end time.Time) (map[string]Entry, error)

	// Upsert writes status and reason for date, refreshing updated_at. A
	// StatusNone write deletes any existing record and is not an error
	// when none exists.
	Upsert(ctx context.Context, date string, status Status, reason string) error

	Close() error
}
