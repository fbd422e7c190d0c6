package repository

import (
	"context"
	"database/sql"
	"errors"

	"mispricing-detector/internal/models"
)

// ErrWatchedMarketNotFound is returned when a lookup finds no matching row.
var ErrWatchedMarketNotFound = errors.New("watched market not found")

// WatchedMarketRepository is the data access layer for the watched_market
// table (§3, §4.1).
type WatchedMarketRepository struct {
	db *sql.DB
}

// NewWatchedMarketRepository builds a WatchedMarketRepository.
func NewWatchedMarketRepository(db *sql.DB) *WatchedMarketRepository {
	return &WatchedMarketRepository{db: db}
}

// Upsert inserts or updates a watched market keyed by condition_id.
func (r *WatchedMarketRepository) Upsert(ctx context.Context, m *models.WatchedMarket) error {
	query := `
		INSERT INTO watched_market (
			condition_id, event_title, question, sport_code, market_type,
			yes_token_id, cached_yes_price, cached_volume, event_start_time,
			monitoring_status, status, source, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, now(), now())
		ON CONFLICT (condition_id) DO UPDATE SET
			event_title = EXCLUDED.event_title,
			question = EXCLUDED.question,
			sport_code = EXCLUDED.sport_code,
			market_type = EXCLUDED.market_type,
			yes_token_id = EXCLUDED.yes_token_id,
			cached_yes_price = EXCLUDED.cached_yes_price,
			cached_volume = EXCLUDED.cached_volume,
			event_start_time = EXCLUDED.event_start_time,
			monitoring_status = EXCLUDED.monitoring_status,
			status = EXCLUDED.status,
			source = EXCLUDED.source,
			updated_at = now()`

	_, err := r.db.ExecContext(ctx, query,
		m.ConditionID, m.EventTitle, m.Question, m.SportCode, m.MarketType,
		nullableString(m.YesTokenID), m.CachedYesPrice, m.CachedVolume, m.EventStartTime,
		m.MonitoringStatus, m.Status, m.Source,
	)
	return err
}

// GetByConditionID returns one watched market by its exchange condition ID.
func (r *WatchedMarketRepository) GetByConditionID(ctx context.Context, conditionID string) (*models.WatchedMarket, error) {
	query := `
		SELECT condition_id, event_title, question, sport_code, market_type,
			COALESCE(yes_token_id, ''), cached_yes_price, cached_volume, event_start_time,
			monitoring_status, status, source, created_at, updated_at
		FROM watched_market
		WHERE condition_id = $1`

	m := &models.WatchedMarket{}
	err := r.db.QueryRowContext(ctx, query, conditionID).Scan(
		&m.ConditionID, &m.EventTitle, &m.Question, &m.SportCode, &m.MarketType,
		&m.YesTokenID, &m.CachedYesPrice, &m.CachedVolume, &m.EventStartTime,
		&m.MonitoringStatus, &m.Status, &m.Source, &m.CreatedAt, &m.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrWatchedMarketNotFound
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

// watchableFilter is the common predicate behind both halves of the
// Market Loader's watch set (§4.1): active, watching/triggered, and
// starting within the next 24h.
const watchableFilter = `
	status = 'active'
	AND monitoring_status IN ('watching', 'triggered')
	AND event_start_time > now() AND event_start_time <= now() + interval '24 hours'`

// ListWatchableAPISourced returns set (a) of the watch set: api/null-sourced
// markets with volume at or above minVolume, ordered by start time, capped
// at limit rows.
func (r *WatchedMarketRepository) ListWatchableAPISourced(ctx context.Context, minVolume float64, limit int) ([]*models.WatchedMarket, error) {
	query := `
		SELECT condition_id, event_title, question, sport_code, market_type,
			COALESCE(yes_token_id, ''), cached_yes_price, cached_volume, event_start_time,
			monitoring_status, status, source, created_at, updated_at
		FROM watched_market
		WHERE (source = 'api' OR source IS NULL)
			AND cached_volume >= $1
			AND ` + watchableFilter + `
		ORDER BY event_start_time ASC
		LIMIT $2`

	return r.queryMarkets(ctx, query, minVolume, limit)
}

// ListWatchableFirecrawlSourced returns set (b) of the watch set:
// firecrawl-sourced markets with no volume filter, capped at limit rows.
func (r *WatchedMarketRepository) ListWatchableFirecrawlSourced(ctx context.Context, limit int) ([]*models.WatchedMarket, error) {
	query := `
		SELECT condition_id, event_title, question, sport_code, market_type,
			COALESCE(yes_token_id, ''), cached_yes_price, cached_volume, event_start_time,
			monitoring_status, status, source, created_at, updated_at
		FROM watched_market
		WHERE source = 'firecrawl'
			AND ` + watchableFilter + `
		ORDER BY event_start_time ASC
		LIMIT $1`

	return r.queryMarkets(ctx, query, limit)
}

func (r *WatchedMarketRepository) queryMarkets(ctx context.Context, query string, args ...interface{}) ([]*models.WatchedMarket, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.WatchedMarket
	for rows.Next() {
		m := &models.WatchedMarket{}
		if err := rows.Scan(
			&m.ConditionID, &m.EventTitle, &m.Question, &m.SportCode, &m.MarketType,
			&m.YesTokenID, &m.CachedYesPrice, &m.CachedVolume, &m.EventStartTime,
			&m.MonitoringStatus, &m.Status, &m.Source, &m.CreatedAt, &m.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// UpdatePrice applies a stateless price refresh (§4.7) for one market.
func (r *WatchedMarketRepository) UpdatePrice(ctx context.Context, conditionID string, yesPrice, volume float64) error {
	query := `
		UPDATE watched_market
		SET cached_yes_price = $2, cached_volume = $3, updated_at = now()
		WHERE condition_id = $1`
	_, err := r.db.ExecContext(ctx, query, conditionID, yesPrice, volume)
	return err
}

// MarkExpired flips a market's monitoring status to expired (§4.7
// event-start gate).
func (r *WatchedMarketRepository) MarkExpired(ctx context.Context, conditionID string) error {
	query := `UPDATE watched_market SET monitoring_status = 'expired', updated_at = now() WHERE condition_id = $1`
	_, err := r.db.ExecContext(ctx, query, conditionID)
	return err
}

func nullableString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
