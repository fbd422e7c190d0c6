package repository

import (
	"context"
	"database/sql"
	"errors"

	"mispricing-detector/internal/models"
)

// ErrEventWatchStateNotFound is returned when no watch state row exists yet
// for a condition ID (the caller should treat this as "not yet escalated").
var ErrEventWatchStateNotFound = errors.New("event watch state not found")

// EventWatchStateRepository is the data access layer for the optional
// long-lived escalation row tracked alongside each watched market (§4.7).
type EventWatchStateRepository struct {
	db *sql.DB
}

// NewEventWatchStateRepository builds an EventWatchStateRepository.
func NewEventWatchStateRepository(db *sql.DB) *EventWatchStateRepository {
	return &EventWatchStateRepository{db: db}
}

// Upsert writes the current escalation state for one condition ID.
func (r *EventWatchStateRepository) Upsert(ctx context.Context, s *models.EventWatchState) error {
	query := `
		INSERT INTO event_watch_state (
			polymarket_condition_id, watch_state, last_poly_refresh,
			current_probability, polymarket_matched, updated_at
		) VALUES ($1, $2, $3, $4, $5, now())
		ON CONFLICT (polymarket_condition_id) DO UPDATE SET
			watch_state = EXCLUDED.watch_state,
			last_poly_refresh = EXCLUDED.last_poly_refresh,
			current_probability = EXCLUDED.current_probability,
			polymarket_matched = EXCLUDED.polymarket_matched,
			updated_at = now()`

	_, err := r.db.ExecContext(ctx, query,
		s.PolymarketConditionID, s.WatchState, s.LastPolyRefresh,
		s.CurrentProbability, s.PolymarketMatched,
	)
	return err
}

// GetByConditionID returns the escalation state for one condition ID.
func (r *EventWatchStateRepository) GetByConditionID(ctx context.Context, conditionID string) (*models.EventWatchState, error) {
	query := `
		SELECT polymarket_condition_id, watch_state, last_poly_refresh,
			current_probability, polymarket_matched, updated_at
		FROM event_watch_state
		WHERE polymarket_condition_id = $1`

	s := &models.EventWatchState{}
	err := r.db.QueryRowContext(ctx, query, conditionID).Scan(
		&s.PolymarketConditionID, &s.WatchState, &s.LastPolyRefresh,
		&s.CurrentProbability, &s.PolymarketMatched, &s.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrEventWatchStateNotFound
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

// MarkExpired transitions a watch state to expired once its market leaves
// the watch set (event started or monitoring was retired).
func (r *EventWatchStateRepository) MarkExpired(ctx context.Context, conditionID string) error {
	query := `UPDATE event_watch_state SET watch_state = $2, updated_at = now() WHERE polymarket_condition_id = $1`
	_, err := r.db.ExecContext(ctx, query, conditionID, models.WatchStateExpired)
	return err
}
