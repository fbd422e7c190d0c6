package matcher

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"mispricing-detector/internal/llmresolver"
	"mispricing-detector/internal/models"
)

func TestLLMMatch_NilServiceAlwaysMisses(t *testing.T) {
	games := []*models.BookmakerGame{{ID: "g1", HomeTeam: "A", AwayTeam: "B"}}
	if g := llmMatch(context.Background(), nil, "A vs B", "nhl", games); g != nil {
		t.Errorf("expected nil service to miss, got %+v", g)
	}
}

type stubResolver struct {
	res *llmresolver.Resolution
}

func (s *stubResolver) Resolve(ctx context.Context, exchangeTitle, sportCode string) (*llmresolver.Resolution, error) {
	return s.res, nil
}

func TestLLMMatch_ResolvesViaService(t *testing.T) {
	resolver := &stubResolver{res: &llmresolver.Resolution{
		HomeTeam:   "Chicago Blackhawks",
		AwayTeam:   "Detroit Red Wings",
		Confidence: llmresolver.ConfidenceHigh,
	}}
	svc := llmresolver.NewService(resolver, llmresolver.NewMapCache(10), zap.NewNop())

	games := []*models.BookmakerGame{
		{ID: "g1", HomeTeam: "Chicago Blackhawks", AwayTeam: "Detroit Red Wings"},
		{ID: "g2", HomeTeam: "Boston Bruins", AwayTeam: "New York Rangers"},
	}

	g := llmMatch(context.Background(), svc, "CHI blackhawks @ DET cryptic ticker", "nhl", games)
	if g == nil || g.ID != "g1" {
		t.Fatalf("expected g1 via llm resolution, got %+v", g)
	}
}
