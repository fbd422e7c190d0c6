package signalbuilder

import (
	"testing"

	"mispricing-detector/internal/models"
)

func TestAssignTier_NetEdgeTenPercentIsAtLeastStrong(t *testing.T) {
	if tier := assignTier(0.10, false); tier != models.TierStrong {
		t.Errorf("expected strong, got %v", tier)
	}
	if tier := assignTier(0.10, true); tier != models.TierElite {
		t.Errorf("expected elite when movement also triggered, got %v", tier)
	}
}

func TestAssignTier_MovementBoostFromStatic(t *testing.T) {
	if tier := assignTier(0.01, true); tier != models.TierStatic {
		t.Errorf("expected static for negligible net edge even with movement, got %v", tier)
	}
	if tier := assignTier(0.04, true); tier != models.TierStrong {
		t.Errorf("expected strong at net edge 0.04 with movement, got %v", tier)
	}
	if tier := assignTier(0.06, true); tier != models.TierElite {
		t.Errorf("expected elite at net edge 0.06 with movement, got %v", tier)
	}
}

func TestAssignTier_NoMovementBelowTenPercentIsStatic(t *testing.T) {
	if tier := assignTier(0.08, false); tier != models.TierStatic {
		t.Errorf("expected static, got %v", tier)
	}
}

func TestEvaluateTrigger_BothWhenEdgeAndMovement(t *testing.T) {
	reason, tier, fired := evaluateTrigger(0.10, 0.12, MovementInput{Triggered: true, BooksConfirming: 2, Shortening: true})
	if !fired {
		t.Fatal("expected trigger to fire")
	}
	if reason != models.TriggerBoth {
		t.Errorf("expected both, got %v", reason)
	}
	if tier != models.TierElite {
		t.Errorf("expected elite, got %v", tier)
	}
}

func TestEvaluateTrigger_NeitherSkips(t *testing.T) {
	_, _, fired := evaluateTrigger(0.03, 0.02, MovementInput{})
	if fired {
		t.Error("expected no trigger in the dead zone with no movement")
	}
}
