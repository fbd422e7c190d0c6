package signalbuilder

import (
	"context"
	"fmt"

	"mispricing-detector/internal/models"
)

// Persister is the subset of the Persistence Adapter (C8) the Signal
// Builder needs to enforce the one-signal-per-event invariant (§4.7
// "Signal persistence").
type Persister interface {
	ExpireOthers(ctx context.Context, eventName, keepRecommendedOutcome string) error
	FindActiveOrTerminal(ctx context.Context, eventName, recommendedOutcome string) (*models.SignalOpportunity, error)
	Insert(ctx context.Context, signal *models.SignalOpportunity) error
	Update(ctx context.Context, signal *models.SignalOpportunity) error
}

// PersistResult reports what happened to a candidate signal, and whether
// it should be forwarded to the downstream notification channel.
type PersistResult struct {
	Signal   *models.SignalOpportunity
	Inserted bool
	Notify   bool
}

// Persist implements §4.7's signal-persistence orchestration:
//  1. expire every other active signal on this event whose outcome differs
//  2. look up an existing signal by (event_name, recommended_outcome)
//  3. skip if it's already terminal (executed/dismissed)
//  4. update in place, or insert a new one
//  5. notify only on newly-inserted strong/elite signals
func Persist(ctx context.Context, p Persister, candidate *models.SignalOpportunity) (PersistResult, error) {
	if err := p.ExpireOthers(ctx, candidate.EventName, candidate.RecommendedOutcome); err != nil {
		return PersistResult{}, fmt.Errorf("signalbuilder: expire other signals: %w", err)
	}

	existing, err := p.FindActiveOrTerminal(ctx, candidate.EventName, candidate.RecommendedOutcome)
	if err != nil {
		return PersistResult{}, fmt.Errorf("signalbuilder: lookup existing signal: %w", err)
	}

	if existing != nil && existing.IsTerminal() {
		return PersistResult{Signal: existing, Inserted: false, Notify: false}, nil
	}

	if existing != nil {
		candidate.ID = existing.ID
		candidate.CreatedAt = existing.CreatedAt
		if err := p.Update(ctx, candidate); err != nil {
			return PersistResult{}, fmt.Errorf("signalbuilder: update signal: %w", err)
		}
		return PersistResult{Signal: candidate, Inserted: false, Notify: false}, nil
	}

	if err := p.Insert(ctx, candidate); err != nil {
		return PersistResult{}, fmt.Errorf("signalbuilder: insert signal: %w", err)
	}
	notify := candidate.SignalTier == models.TierStrong || candidate.SignalTier == models.TierElite
	return PersistResult{Signal: candidate, Inserted: true, Notify: notify}, nil
}
