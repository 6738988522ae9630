package repository

import (
	"context"

	"tracetime/internal/types"
)

// ActivityRepository persists and aggregates per-second activity durations.
type ActivityRepository interface {
	// IncrementLatest adds one second to the most recently created row
	// matching (app, title, isPrimary). It reports whether such a row
	// existed.
	IncrementLatest(ctx context.Context, app, title string, isPrimary bool) (bool, error)

	// Insert creates a new row with Duration=1 and the current local
	// timestamp, returning its id.
	Insert(ctx context.Context, record *types.ActivityRecord) (int64, error)

	// GetStats returns totals for the named range grouped by
	// (app, is_primary), each with a per-title breakdown, both ordered by
	// descending duration.
	GetStats(ctx context.Context, rng string) ([]*types.ActivityRecord, error)

	// GetDailyTotals returns seconds per shifted calendar day. Best-effort:
	// failures yield an empty map.
	GetDailyTotals(ctx context.Context) map[string]int64

	// GetTotalToday returns today's summed duration, optionally including
	// background rows.
	GetTotalToday(ctx context.Context, includeBackground bool) (int64, error)
}
