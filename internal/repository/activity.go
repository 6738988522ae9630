package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"tracetime/internal/database"
	repoerrors "tracetime/internal/infrastructure/errors"
	"tracetime/internal/infrastructure/logging"
	"tracetime/internal/types"
)

// SQLiteActivityRepository implements ActivityRepository on the SQLite
// activity log.
type SQLiteActivityRepository struct {
	db     *sqlx.DB
	logger logging.Logger
}

var _ ActivityRepository = (*SQLiteActivityRepository)(nil)

// NewSQLiteActivityRepository creates a repository bound to the database
// service's connection.
func NewSQLiteActivityRepository(dbService database.Service, logger logging.Logger) *SQLiteActivityRepository {
	if logger == nil {
		logger = logging.NewDefaultLogger()
	}
	return &SQLiteActivityRepository{
		db:     dbService.DB(),
		logger: logger,
	}
}

// IncrementLatest adds one second to the most recently created row matching
// (app, title, isPrimary) exactly. The row choice mirrors the write side of
// the per-tick log: titles match case-sensitively, apps by exact stored
// value.
func (r *SQLiteActivityRepository) IncrementLatest(ctx context.Context, app, title string, isPrimary bool) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE activity SET duration = duration + 1
		WHERE id = (
			SELECT id FROM activity
			WHERE app_name = ? AND window_title = ? AND is_primary = ?
			ORDER BY id DESC LIMIT 1
		)`,
		app, title, boolToInt(isPrimary))
	if err != nil {
		return false, repoerrors.WrapDatabaseErrorWithContext("IncrementLatest", err, map[string]string{
			"app": app,
		})
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, repoerrors.WrapDatabaseError("IncrementLatest", err)
	}
	return affected > 0, nil
}

// Insert creates a new activity row with Duration=1 at the current local
// time.
func (r *SQLiteActivityRepository) Insert(ctx context.Context, record *types.ActivityRecord) (int64, error) {
	if record == nil {
		return 0, repoerrors.HandleValidationError("Insert", "record", "nil", "record is required")
	}
	if record.AppName == "" {
		return 0, repoerrors.HandleValidationError("Insert", "app_name", "", "app name is required")
	}

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO activity (app_name, window_title, timestamp, duration, is_primary)
		VALUES (?, ?, datetime('now', 'localtime'), 1, ?)`,
		record.AppName, record.WindowTitle, boolToInt(record.IsPrimary))
	if err != nil {
		return 0, repoerrors.WrapDatabaseErrorWithContext("Insert", err, map[string]string{
			"app": record.AppName,
		})
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, repoerrors.WrapDatabaseError("Insert", err)
	}
	record.ID = id
	return id, nil
}

type statsRow struct {
	AppName   string `db:"app_name"`
	Total     int64  `db:"total"`
	IsPrimary bool   `db:"is_primary"`
}

type detailRow struct {
	WindowTitle string `db:"window_title"`
	Total       int64  `db:"total"`
}

// GetStats aggregates the named range by (app, is_primary) with nested
// per-title breakdowns, all ordered by descending total duration.
func (r *SQLiteActivityRepository) GetStats(ctx context.Context, rng string) ([]*types.ActivityRecord, error) {
	cond := rangeCondition(rng)

	var rows []statsRow
	query := fmt.Sprintf(`
		SELECT app_name, SUM(duration) AS total, is_primary
		FROM activity
		WHERE %s
		GROUP BY app_name, is_primary
		ORDER BY total DESC`, cond)
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, repoerrors.WrapDatabaseErrorWithContext("GetStats", err, map[string]string{
			"range": rng,
		})
	}

	stats := make([]*types.ActivityRecord, 0, len(rows))
	for _, row := range rows {
		details, err := r.appDetails(ctx, row.AppName, cond)
		if err != nil {
			return nil, err
		}
		stats = append(stats, &types.ActivityRecord{
			AppName:   row.AppName,
			Duration:  row.Total,
			IsPrimary: row.IsPrimary,
			Details:   details,
		})
	}
	return stats, nil
}

// appDetails returns the per-title breakdown for one app within the range.
func (r *SQLiteActivityRepository) appDetails(ctx context.Context, appName, cond string) ([]*types.ActivityRecord, error) {
	var rows []detailRow
	query := fmt.Sprintf(`
		SELECT window_title, SUM(duration) AS total
		FROM activity
		WHERE app_name = ? AND %s
		GROUP BY window_title
		ORDER BY total DESC`, cond)
	if err := r.db.SelectContext(ctx, &rows, query, appName); err != nil {
		return nil, repoerrors.WrapDatabaseErrorWithContext("GetStats", err, map[string]string{
			"app": appName,
		})
	}

	details := make([]*types.ActivityRecord, 0, len(rows))
	for _, row := range rows {
		details = append(details, &types.ActivityRecord{
			AppName:     appName,
			WindowTitle: row.WindowTitle,
			Duration:    row.Total,
		})
	}
	return details, nil
}

// GetDailyTotals returns summed seconds per shifted calendar day for the
// heat map. Best-effort: any failure yields an empty map.
func (r *SQLiteActivityRepository) GetDailyTotals(ctx context.Context) map[string]int64 {
	totals := make(map[string]int64)

	rows, err := r.db.QueryContext(ctx, `
		SELECT date(timestamp, '-4 hours') AS day, SUM(duration)
		FROM activity
		GROUP BY day`)
	if err != nil {
		r.logger.Warn("Daily totals unavailable", "error", err)
		return totals
	}
	defer rows.Close()

	for rows.Next() {
		var day *string
		var total int64
		if err := rows.Scan(&day, &total); err != nil {
			r.logger.Warn("Skipping unreadable daily total", "error", err)
			continue
		}
		if day != nil {
			totals[*day] = total
		}
	}
	if err := rows.Err(); err != nil {
		r.logger.Warn("Daily totals truncated", "error", err)
	}
	return totals
}

// GetTotalToday sums today's durations using the unshifted local date,
// optionally including background rows.
func (r *SQLiteActivityRepository) GetTotalToday(ctx context.Context, includeBackground bool) (int64, error) {
	query := `SELECT COALESCE(SUM(duration), 0) FROM activity WHERE date(timestamp) = date('now', 'localtime')`
	if !includeBackground {
		query += " AND is_primary = 1"
	}

	var total int64
	if err := r.db.QueryRowContext(ctx, query).Scan(&total); err != nil {
		return 0, repoerrors.WrapDatabaseError("GetTotalToday", err)
	}
	return total, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
