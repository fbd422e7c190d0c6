package signalbuilder

import (
	"testing"
	"time"

	"go.uber.org/zap"

	"mispricing-detector/internal/models"
)

func baseInput(now time.Time) Input {
	return Input{
		Market: &models.WatchedMarket{
			EventTitle:      "Chicago Blackhawks vs Detroit Red Wings",
			YesTokenID:      "token-123",
			CachedYesPrice:  0.50,
			CachedVolume:    200_000,
			EventStartTime:  now.Add(2 * time.Hour),
			ConditionID:     "cond-1",
		},
		Match: &models.MatchResult{
			YesTeamName: "Chicago Blackhawks",
			NoTeamName:  "Detroit Red Wings",
		},
		ExchangeYesTeam: "Chicago Blackhawks",
		ExchangeNoTeam:  "Detroit Red Wings",
		YesFair:         0.65,
		NoFair:          0.35,
		LastPolyRefresh: now,
		Costs: CostInputs{
			Volume: 200_000,
			Stake:  100,
		},
		Now: now,
	}
}

func TestBuild_ProducesSignalOnPositiveEdge(t *testing.T) {
	now := time.Now()
	b := New(zap.NewNop())

	signal, reason, err := b.Build(baseInput(now))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reason != SkipNone {
		t.Fatalf("expected a signal, got skip reason %q", reason)
	}
	if signal.Side != models.SideYes {
		t.Errorf("expected YES side (yes_fair 0.65 vs price 0.50), got %v", signal.Side)
	}
	if signal.RecommendedOutcome != "Chicago Blackhawks" {
		t.Errorf("unexpected recommended outcome: %s", signal.RecommendedOutcome)
	}
}

func TestBuild_SkipsWhenNeitherEdgePositive(t *testing.T) {
	now := time.Now()
	in := baseInput(now)
	in.YesFair = 0.45
	in.NoFair = 0.45

	b := New(zap.NewNop())
	_, reason, err := b.Build(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reason != SkipBestEdgeNotPositive {
		t.Errorf("expected SkipBestEdgeNotPositive, got %q", reason)
	}
}

func TestBuild_SkipsWhenNoTokenID(t *testing.T) {
	now := time.Now()
	in := baseInput(now)
	in.Market.YesTokenID = ""

	b := New(zap.NewNop())
	_, reason, err := b.Build(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reason != SkipNoTokenID {
		t.Errorf("expected SkipNoTokenID, got %q", reason)
	}
}

func TestBuild_SkipsExpiredEvent(t *testing.T) {
	now := time.Now()
	in := baseInput(now)
	in.Market.EventStartTime = now.Add(-time.Minute)

	b := New(zap.NewNop())
	_, reason, err := b.Build(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reason != SkipEventExpired {
		t.Errorf("expected SkipEventExpired, got %q", reason)
	}
}

func TestBuild_DualMappingBlock(t *testing.T) {
	now := time.Now()
	in := baseInput(now)
	// As-assumed edges are both tiny, but assuming live_yes_price was
	// mis-assigned to the wrong side reveals a huge edge -- the classic
	// inverted-mapping case the rail exists to catch.
	in.Market.CachedYesPrice = 0.90
	in.YesFair = 0.905
	in.NoFair = 0.095

	b := New(zap.NewNop())
	_, reason, err := b.Build(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reason != SkipDualMappingBlock {
		t.Errorf("expected SkipDualMappingBlock, got %q", reason)
	}
}

func TestBuild_StalenessRailSkipsHighProbStalePrice(t *testing.T) {
	now := time.Now()
	in := baseInput(now)
	in.YesFair = 0.90
	in.Market.CachedYesPrice = 0.60
	in.LastPolyRefresh = now.Add(-10 * time.Minute)

	b := New(zap.NewNop())
	_, reason, err := b.Build(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reason != SkipStaleHighProb {
		t.Errorf("expected SkipStaleHighProb, got %q", reason)
	}
}

func TestBuild_ExtremeEdgeCapped(t *testing.T) {
	now := time.Now()
	in := baseInput(now)
	in.YesFair = 0.95
	in.Market.CachedYesPrice = 0.40 // raw edge 0.55, well above cap

	b := New(zap.NewNop())
	signal, reason, err := b.Build(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reason != SkipNone {
		t.Fatalf("expected a signal, got skip reason %q", reason)
	}
	if signal.EdgePercent > 40.01 {
		t.Errorf("expected raw edge capped at 0.40 (40%%), got %f%%", signal.EdgePercent)
	}
}

func TestBuild_MovementTriggerWithoutEdgeStillFires(t *testing.T) {
	now := time.Now()
	in := baseInput(now)
	in.YesFair = 0.52 // small edge, below the 0.05 edge trigger
	in.YesMovement = MovementInput{Triggered: true, BooksConfirming: 2, Shortening: true, Velocity: 0.04}

	b := New(zap.NewNop())
	signal, reason, err := b.Build(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reason != SkipNone {
		t.Fatalf("expected movement trigger to fire a signal, got skip reason %q", reason)
	}
	if signal.SignalFactors.TriggerReason != models.TriggerMovement {
		t.Errorf("expected movement trigger reason, got %v", signal.SignalFactors.TriggerReason)
	}
}

func TestBuild_NoTriggerSkipsInTheDeadZone(t *testing.T) {
	now := time.Now()
	in := baseInput(now)
	in.YesFair = 0.53 // raw edge ~0.03: between 0.02 and 0.05, no movement
	in.NoFair = 0.47

	b := New(zap.NewNop())
	_, reason, err := b.Build(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reason != SkipNoTrigger {
		t.Errorf("expected SkipNoTrigger in the dead zone, got %q", reason)
	}
}
