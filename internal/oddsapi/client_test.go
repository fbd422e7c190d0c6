package oddsapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"mispricing-detector/internal/models"
)

func games(bookmakerCount int) []*models.BookmakerGame {
	g := &models.BookmakerGame{ID: "g1"}
	for i := 0; i < bookmakerCount; i++ {
		g.Bookmakers = append(g.Bookmakers, models.BookmakerOdds{Key: "book"})
	}
	return []*models.BookmakerGame{g}
}

func TestFetchSport_ConvertsGamesAndBookmakers(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("apiKey") != "test-key" {
			t.Errorf("expected apiKey=test-key, got %q", r.URL.Query().Get("apiKey"))
		}
		resp := []oddsAPIGame{
			{
				ID:           "game-1",
				CommenceTime: "2026-08-01T18:00:00Z",
				HomeTeam:     "Lakers",
				AwayTeam:     "Celtics",
				Bookmakers: []oddsAPIBookmaker{
					{
						Key: "pinnacle",
						Markets: []oddsAPIMarket{
							{Key: "h2h", Outcomes: []oddsAPIOutcome{
								{Name: "Lakers", Price: 1.91},
								{Name: "Celtics", Price: 1.95},
							}},
						},
					},
				},
			},
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	c := New(Config{APIKey: "test-key", BaseURL: srv.URL, Regions: "us", OddsFormat: "decimal", Markets: "h2h", Rate: 1000, Burst: 1000}, zap.NewNop())
	games, err := c.FetchSport(context.Background(), "basketball_nba")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(games) != 1 {
		t.Fatalf("got %d games, want 1", len(games))
	}
	g := games[0]
	if g.HomeTeam != "Lakers" || g.AwayTeam != "Celtics" {
		t.Errorf("unexpected teams: %+v", g)
	}
	if len(g.Bookmakers) != 1 || g.Bookmakers[0].Key != "pinnacle" {
		t.Errorf("unexpected bookmakers: %+v", g.Bookmakers)
	}
	if len(g.Bookmakers[0].Markets) != 1 || g.Bookmakers[0].Markets[0].Key != "h2h" {
		t.Errorf("unexpected markets: %+v", g.Bookmakers[0].Markets)
	}
}

func TestHasConsensus(t *testing.T) {
	game := games(1)[0]
	if HasConsensus(game) {
		t.Error("expected single-bookmaker game to lack consensus")
	}
	twoBook := games(2)[0]
	if !HasConsensus(twoBook) {
		t.Error("expected two-bookmaker game to have consensus")
	}
	if HasConsensus(nil) {
		t.Error("expected nil game to lack consensus")
	}
}

func TestFetchSport_ErrorOnNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	c := New(Config{APIKey: "k", BaseURL: srv.URL, Rate: 1000, Burst: 1000}, zap.NewNop())
	if _, err := c.FetchSport(context.Background(), "soccer_epl"); err == nil {
		t.Error("expected error on non-2xx response")
	}
}
