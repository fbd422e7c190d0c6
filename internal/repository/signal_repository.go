package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	jsoniter "github.com/json-iterator/go"
	"github.com/google/uuid"

	"mispricing-detector/internal/models"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ErrSignalNotFound is returned when a lookup finds no matching row.
var ErrSignalNotFound = errors.New("signal not found")

// SignalRepository is the data access layer for the signal_opportunity
// table and implements signalbuilder.Persister.
type SignalRepository struct {
	db *sql.DB
}

// NewSignalRepository builds a SignalRepository.
func NewSignalRepository(db *sql.DB) *SignalRepository {
	return &SignalRepository{db: db}
}

// ExpireOthers flips every other active signal on this event, whose
// recommended outcome differs from keepRecommendedOutcome, to expired.
// Enforces the one-active-signal-per-event invariant (§3).
func (r *SignalRepository) ExpireOthers(ctx context.Context, eventName, keepRecommendedOutcome string) error {
	query := `
		UPDATE signal_opportunity
		SET status = $3, updated_at = now()
		WHERE event_name = $1 AND recommended_outcome <> $2 AND status = $4`
	_, err := r.db.ExecContext(ctx, query, eventName, keepRecommendedOutcome, models.SignalStatusExpired, models.SignalStatusActive)
	return err
}

// FindActiveOrTerminal returns the most recent signal for (event_name,
// recommended_outcome) regardless of status, or nil if none exists.
func (r *SignalRepository) FindActiveOrTerminal(ctx context.Context, eventName, recommendedOutcome string) (*models.SignalOpportunity, error) {
	query := `
		SELECT id, event_name, recommended_outcome, side, polymarket_price,
			bookmaker_prob_fair, edge_percent, signal_strength, signal_tier,
			movement_confirmed, movement_velocity, confidence_score, urgency,
			status, expires_at, signal_factors, polymarket_condition_id,
			created_at, updated_at
		FROM signal_opportunity
		WHERE event_name = $1 AND recommended_outcome = $2
		ORDER BY created_at DESC
		LIMIT 1`

	s, err := r.scanRow(r.db.QueryRowContext(ctx, query, eventName, recommendedOutcome))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Insert writes a newly-created signal, assigning it a fresh ID.
func (r *SignalRepository) Insert(ctx context.Context, s *models.SignalOpportunity) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	factors, err := json.Marshal(s.SignalFactors)
	if err != nil {
		return fmt.Errorf("repository: marshal signal factors: %w", err)
	}

	query := `
		INSERT INTO signal_opportunity (
			id, event_name, recommended_outcome, side, polymarket_price,
			bookmaker_prob_fair, edge_percent, signal_strength, signal_tier,
			movement_confirmed, movement_velocity, confidence_score, urgency,
			status, expires_at, signal_factors, polymarket_condition_id,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, now(), now())`

	_, err = r.db.ExecContext(ctx, query,
		s.ID, s.EventName, s.RecommendedOutcome, s.Side, s.PolymarketPrice,
		s.BookmakerProbFair, s.EdgePercent, s.SignalStrength, s.SignalTier,
		s.MovementConfirmed, s.MovementVelocity, s.ConfidenceScore, s.Urgency,
		s.Status, s.ExpiresAt, factors, s.PolymarketConditionID,
	)
	return err
}

// Update overwrites an existing signal in place, preserving its ID and
// created_at (the caller is expected to have copied those over already).
func (r *SignalRepository) Update(ctx context.Context, s *models.SignalOpportunity) error {
	factors, err := json.Marshal(s.SignalFactors)
	if err != nil {
		return fmt.Errorf("repository: marshal signal factors: %w", err)
	}

	query := `
		UPDATE signal_opportunity SET
			side = $2, polymarket_price = $3, bookmaker_prob_fair = $4,
			edge_percent = $5, signal_strength = $6, signal_tier = $7,
			movement_confirmed = $8, movement_velocity = $9, confidence_score = $10,
			urgency = $11, status = $12, expires_at = $13, signal_factors = $14,
			polymarket_condition_id = $15, updated_at = now()
		WHERE id = $1`

	_, err = r.db.ExecContext(ctx, query,
		s.ID, s.Side, s.PolymarketPrice, s.BookmakerProbFair,
		s.EdgePercent, s.SignalStrength, s.SignalTier,
		s.MovementConfirmed, s.MovementVelocity, s.ConfidenceScore,
		s.Urgency, s.Status, s.ExpiresAt, factors,
		s.PolymarketConditionID,
	)
	return err
}

// GetByID returns one signal by its primary key.
func (r *SignalRepository) GetByID(ctx context.Context, id string) (*models.SignalOpportunity, error) {
	query := `
		SELECT id, event_name, recommended_outcome, side, polymarket_price,
			bookmaker_prob_fair, edge_percent, signal_strength, signal_tier,
			movement_confirmed, movement_velocity, confidence_score, urgency,
			status, expires_at, signal_factors, polymarket_condition_id,
			created_at, updated_at
		FROM signal_opportunity
		WHERE id = $1`

	s, err := r.scanRow(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSignalNotFound
	}
	return s, err
}

// ListActive returns all currently-active signals, most recent first.
func (r *SignalRepository) ListActive(ctx context.Context) ([]*models.SignalOpportunity, error) {
	query := `
		SELECT id, event_name, recommended_outcome, side, polymarket_price,
			bookmaker_prob_fair, edge_percent, signal_strength, signal_tier,
			movement_confirmed, movement_velocity, confidence_score, urgency,
			status, expires_at, signal_factors, polymarket_condition_id,
			created_at, updated_at
		FROM signal_opportunity
		WHERE status = $1
		ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, models.SignalStatusActive)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.SignalOpportunity
	for rows.Next() {
		s, err := r.scanRows(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

type scannable interface {
	Scan(dest ...interface{}) error
}

func (r *SignalRepository) scanRow(row *sql.Row) (*models.SignalOpportunity, error) {
	return r.scan(row)
}

func (r *SignalRepository) scanRows(rows *sql.Rows) (*models.SignalOpportunity, error) {
	return r.scan(rows)
}

func (r *SignalRepository) scan(row scannable) (*models.SignalOpportunity, error) {
	s := &models.SignalOpportunity{}
	var factors []byte
	err := row.Scan(
		&s.ID, &s.EventName, &s.RecommendedOutcome, &s.Side, &s.PolymarketPrice,
		&s.BookmakerProbFair, &s.EdgePercent, &s.SignalStrength, &s.SignalTier,
		&s.MovementConfirmed, &s.MovementVelocity, &s.ConfidenceScore, &s.Urgency,
		&s.Status, &s.ExpiresAt, &factors, &s.PolymarketConditionID,
		&s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(factors) > 0 {
		if err := json.Unmarshal(factors, &s.SignalFactors); err != nil {
			return nil, fmt.Errorf("repository: unmarshal signal factors: %w", err)
		}
	}
	return s, nil
}
