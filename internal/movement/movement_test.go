package movement

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"mispricing-detector/internal/models"
)

type fakeLoader struct {
	snapshots []models.SharpSnapshot
	err       error
}

func (f *fakeLoader) LoadSince(ctx context.Context, eventKey, outcome string, since time.Time) ([]models.SharpSnapshot, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []models.SharpSnapshot
	for _, s := range f.snapshots {
		if !s.CapturedAt.Before(since) {
			out = append(out, s)
		}
	}
	return out, nil
}

func snap(book string, p float64, at time.Time) models.SharpSnapshot {
	return models.SharpSnapshot{Bookmaker: book, ImpliedProbability: p, CapturedAt: at}
}

func TestEvaluate_FewerThanTwoSnapshots(t *testing.T) {
	now := time.Now()
	loader := &fakeLoader{snapshots: []models.SharpSnapshot{snap("pinnacle", 0.5, now)}}
	d := New(loader, zap.NewNop())

	result, err := d.Evaluate(context.Background(), "key", "outcome", now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Triggered {
		t.Error("expected no trigger with fewer than 2 snapshots")
	}
}

func TestEvaluate_TriggersOnTwoConfirmingSharpBooks(t *testing.T) {
	now := time.Now()
	// both books move from 0.50 to 0.60 (+0.10, above both absolute and
	// relative thresholds), with all movement inside the last 10 minutes.
	loader := &fakeLoader{snapshots: []models.SharpSnapshot{
		snap("pinnacle", 0.50, now.Add(-20*time.Minute)),
		snap("pinnacle", 0.50, now.Add(-9*time.Minute)),
		snap("pinnacle", 0.60, now),
		snap("betfair", 0.50, now.Add(-20*time.Minute)),
		snap("betfair", 0.50, now.Add(-9*time.Minute)),
		snap("betfair", 0.60, now),
	}}
	d := New(loader, zap.NewNop())

	result, err := d.Evaluate(context.Background(), "key", "outcome", now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Triggered {
		t.Fatal("expected trigger with 2 confirming sharp books")
	}
	if result.Direction != DirectionShortening {
		t.Errorf("expected shortening direction, got %v", result.Direction)
	}
	if result.BooksConfirming != 2 {
		t.Errorf("expected 2 confirming books, got %d", result.BooksConfirming)
	}
}

func TestEvaluate_SingleBookDoesNotTrigger(t *testing.T) {
	now := time.Now()
	loader := &fakeLoader{snapshots: []models.SharpSnapshot{
		snap("pinnacle", 0.50, now.Add(-20*time.Minute)),
		snap("pinnacle", 0.60, now),
	}}
	d := New(loader, zap.NewNop())

	result, err := d.Evaluate(context.Background(), "key", "outcome", now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Triggered {
		t.Error("expected no trigger with only 1 confirming book")
	}
}

func TestEvaluate_OppositeMoveVetoesTrigger(t *testing.T) {
	now := time.Now()
	loader := &fakeLoader{snapshots: []models.SharpSnapshot{
		snap("pinnacle", 0.50, now.Add(-20*time.Minute)),
		snap("pinnacle", 0.50, now.Add(-9*time.Minute)),
		snap("pinnacle", 0.60, now),
		snap("betfair", 0.50, now.Add(-20*time.Minute)),
		snap("betfair", 0.50, now.Add(-9*time.Minute)),
		snap("betfair", 0.60, now),
		snap("circa", 0.60, now.Add(-20*time.Minute)),
		snap("circa", 0.60, now.Add(-9*time.Minute)),
		snap("circa", 0.50, now), // moves opposite direction by 0.10
	}}
	d := New(loader, zap.NewNop())

	result, err := d.Evaluate(context.Background(), "key", "outcome", now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Triggered {
		t.Error("expected opposite-direction move from a third sharp book to veto the trigger")
	}
}

func TestEvaluate_BelowThresholdDoesNotQualify(t *testing.T) {
	now := time.Now()
	loader := &fakeLoader{snapshots: []models.SharpSnapshot{
		snap("pinnacle", 0.50, now.Add(-20*time.Minute)),
		snap("pinnacle", 0.505, now), // +0.005, below both thresholds
		snap("betfair", 0.50, now.Add(-20*time.Minute)),
		snap("betfair", 0.505, now),
	}}
	d := New(loader, zap.NewNop())

	result, err := d.Evaluate(context.Background(), "key", "outcome", now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Triggered {
		t.Error("expected sub-threshold move to not qualify")
	}
}

func TestEvaluate_NonSharpBookIgnored(t *testing.T) {
	now := time.Now()
	loader := &fakeLoader{snapshots: []models.SharpSnapshot{
		snap("draftkings", 0.50, now.Add(-20*time.Minute)),
		snap("draftkings", 0.70, now),
	}}
	d := New(loader, zap.NewNop())

	result, err := d.Evaluate(context.Background(), "key", "outcome", now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Triggered {
		t.Error("expected non-sharp book movement to be ignored entirely")
	}
}
