package repository

import (
	"context"
	"database/sql"
	"time"

	"mispricing-detector/internal/models"
)

// SharpSnapshotRepository is the data access layer for the time-series
// sharp_snapshot table the Movement Detector (C6) reads from.
type SharpSnapshotRepository struct {
	db *sql.DB
}

// NewSharpSnapshotRepository builds a SharpSnapshotRepository.
func NewSharpSnapshotRepository(db *sql.DB) *SharpSnapshotRepository {
	return &SharpSnapshotRepository{db: db}
}

// Insert records one immutable sharp-book observation. Unique on
// (event_key, outcome, bookmaker, captured_at) so a pass re-running the
// same second is idempotent (§4.8).
func (r *SharpSnapshotRepository) Insert(ctx context.Context, s models.SharpSnapshot) error {
	query := `
		INSERT INTO sharp_snapshot (id, event_key, event_name, outcome, bookmaker, implied_probability, raw_odds, captured_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (event_key, outcome, bookmaker, captured_at) DO NOTHING`
	_, err := r.db.ExecContext(ctx, query, s.ID, s.EventKey, s.EventName, s.Outcome, s.Bookmaker, s.ImpliedProbability, s.RawOdds, s.CapturedAt)
	return err
}

// LoadSince implements movement.SnapshotLoader: all snapshots for
// (event_key, outcome) captured at or after since, ascending by time.
func (r *SharpSnapshotRepository) LoadSince(ctx context.Context, eventKey, outcome string, since time.Time) ([]models.SharpSnapshot, error) {
	query := `
		SELECT id, event_key, event_name, outcome, bookmaker, implied_probability, raw_odds, captured_at
		FROM sharp_snapshot
		WHERE event_key = $1 AND outcome = $2 AND captured_at >= $3
		ORDER BY captured_at ASC`

	rows, err := r.db.QueryContext(ctx, query, eventKey, outcome, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.SharpSnapshot
	for rows.Next() {
		var s models.SharpSnapshot
		if err := rows.Scan(&s.ID, &s.EventKey, &s.EventName, &s.Outcome, &s.Bookmaker, &s.ImpliedProbability, &s.RawOdds, &s.CapturedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// DeleteOlderThan implements the retention rule (§3): snapshots older
// than the bound are purged (minimum 30m retained, maximum 24h).
func (r *SharpSnapshotRepository) DeleteOlderThan(ctx context.Context, bound time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM sharp_snapshot WHERE captured_at < $1`, bound)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
