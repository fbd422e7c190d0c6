package utils

import "testing"

func TestVigFreeProbability(t *testing.T) {
	tests := []struct {
		name        string
		rawTarget   float64
		rawOutcomes []float64
		want        float64
		ok          bool
	}{
		{"two way even", 0.5, []float64{0.5, 0.5}, 0.5, true},
		{"vig present", 0.55, []float64{0.55, 0.55}, 0.5, true},
		{"no weight", 0.5, []float64{0, 0}, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := VigFreeProbability(tt.rawTarget, tt.rawOutcomes)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if ok && (got < tt.want-1e-9 || got > tt.want+1e-9) {
				t.Errorf("got %f, want %f", got, tt.want)
			}
		})
	}
}

func TestImpliedProbability(t *testing.T) {
	if got := ImpliedProbability(2.0); got != 0.5 {
		t.Errorf("got %f, want 0.5", got)
	}
	if got := ImpliedProbability(0); got != 0 {
		t.Errorf("got %f, want 0", got)
	}
}

func TestWeightedMean(t *testing.T) {
	values := []float64{0.4, 0.6}
	weights := []float64{1.5, 1.0}
	got, ok := WeightedMean(values, weights)
	if !ok {
		t.Fatal("expected ok=true")
	}
	want := (0.4*1.5 + 0.6*1.0) / 2.5
	if got < want-1e-9 || got > want+1e-9 {
		t.Errorf("got %f, want %f", got, want)
	}

	if _, ok := WeightedMean(values, []float64{0, 0}); ok {
		t.Error("expected ok=false when all weights are non-positive")
	}

	if _, ok := WeightedMean(values, []float64{1.0}); ok {
		t.Error("expected ok=false on length mismatch")
	}
}

func TestSpreadCostFallback(t *testing.T) {
	if got := SpreadCostFallback(1_000_000); got != 0.005 {
		t.Errorf("got %f, want 0.005", got)
	}
	if got := SpreadCostFallback(5_000); got != 0.03 {
		t.Errorf("got %f, want 0.03", got)
	}
	mid := SpreadCostFallback(255_000)
	if mid <= 0.005 || mid >= 0.03 {
		t.Errorf("mid-range spread cost %f out of expected bounds", mid)
	}
}

func TestSlippageCost(t *testing.T) {
	got := SlippageCost(1000, 100_000)
	if got < 0.002 || got > 0.03 {
		t.Errorf("slippage %f out of bounds [0.002,0.03]", got)
	}
	if got := SlippageCost(1000, 0); got != 0.03 {
		t.Errorf("zero-volume slippage = %f, want 0.03", got)
	}
}

func TestNetEdge(t *testing.T) {
	got := NetEdge(0.10, 0.01, 0.01)
	want := 0.10 - 0.001 - 0.01 - 0.01
	if got < want-1e-9 || got > want+1e-9 {
		t.Errorf("got %f, want %f", got, want)
	}
}
