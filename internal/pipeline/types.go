// Package pipeline wires the Market Loader (C1) and the per-pass
// orchestration (C9) together: it is the only package that knows about
// every other component and drives them in the order §5 prescribes.
package pipeline

import (
	"context"
	"time"

	"mispricing-detector/internal/exchangeapi"
	"mispricing-detector/internal/fairprob"
	"mispricing-detector/internal/models"
	"mispricing-detector/internal/movement"
	"mispricing-detector/internal/signalbuilder"
)

// MarketRepo is the subset of the watched-market persistence layer (C8)
// the pipeline depends on.
type MarketRepo interface {
	ListWatchableAPISourced(ctx context.Context, minVolume float64, limit int) ([]*models.WatchedMarket, error)
	ListWatchableFirecrawlSourced(ctx context.Context, limit int) ([]*models.WatchedMarket, error)
	GetByConditionID(ctx context.Context, conditionID string) (*models.WatchedMarket, error)
	UpdatePrice(ctx context.Context, conditionID string, yesPrice, volume float64) error
	MarkExpired(ctx context.Context, conditionID string) error
}

// SnapshotRepo is the subset of the sharp-snapshot persistence layer the
// pipeline depends on: movement.SnapshotLoader to read, plus Insert to
// write this pass's observations (consumed starting next pass, §5).
type SnapshotRepo interface {
	LoadSince(ctx context.Context, eventKey, outcome string, since time.Time) ([]models.SharpSnapshot, error)
	Insert(ctx context.Context, s models.SharpSnapshot) error
}

// EventWatchRepo is the optional long-lived escalation row (§3
// EventWatchState) the pipeline updates every pass. A nil EventWatchRepo
// simply disables escalation tracking; the detector is fully functional
// without it.
type EventWatchRepo interface {
	GetByConditionID(ctx context.Context, conditionID string) (*models.EventWatchState, error)
	Upsert(ctx context.Context, s *models.EventWatchState) error
	MarkExpired(ctx context.Context, conditionID string) error
}

// SignalStore is the persistence surface the Signal Builder needs
// (signalbuilder.Persister), plus ListActive for the stateless price
// refresh §4.7 runs at the start of every pass.
type SignalStore interface {
	signalbuilder.Persister
	ListActive(ctx context.Context) ([]*models.SignalOpportunity, error)
}

// ExchangeQuoter is the Exchange Price Fetcher (C2) contract.
type ExchangeQuoter interface {
	FetchQuotes(ctx context.Context, tokenIDs []string) map[string]exchangeapi.Quote
}

// OddsFetcher is the Sportsbook Odds Fetcher (C3) contract.
type OddsFetcher interface {
	FetchSport(ctx context.Context, sportKey string) ([]*models.BookmakerGame, error)
}

// MarketMatcher is the Event Matcher (C4) contract.
type MarketMatcher interface {
	Match(ctx context.Context, market *models.WatchedMarket, candidates []*models.BookmakerGame, now time.Time) (*models.MatchResult, error)
}

// FairProbEngine is the Fair Probability Engine (C5) contract.
type FairProbEngine interface {
	ComputeH2H(game *models.BookmakerGame, teamName string) (fairprob.Result, bool)
}

// MovementEvaluator is the Movement Detector (C6) contract.
type MovementEvaluator interface {
	Evaluate(ctx context.Context, eventKey, outcome string, now time.Time) (movement.Result, error)
}

// SignalBuilder is the decision authority (C7) contract.
type SignalBuilder interface {
	Build(in signalbuilder.Input) (*models.SignalOpportunity, signalbuilder.SkipReason, error)
}

// QuotaResetter is implemented by llmresolver.Client; a nil QuotaResetter
// means the LLM tier is disabled and nothing needs resetting per pass.
type QuotaResetter interface {
	ResetPassQuota()
}

// Notifier receives newly-inserted strong/elite signals (§4.7 "notify
// only on newly-inserted" rule). The outbound SMS/notification fan-out
// itself is out of scope (§1); this is the seam it plugs into.
type Notifier interface {
	Notify(ctx context.Context, signal *models.SignalOpportunity)
}

// Counters is the Scheduler Entry Point's (C9) per-pass report.
type Counters struct {
	EventsPolled      int   `json:"events_polled"`
	EventsMatched     int   `json:"events_matched"`
	EventsExpired     int   `json:"events_expired"`
	EdgesFound        int   `json:"edges_found"`
	MovementConfirmed int   `json:"movement_confirmed"`
	AlertsSent        int   `json:"alerts_sent"`
	DurationMs        int64 `json:"duration_ms"`
}
