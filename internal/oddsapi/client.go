// Package oddsapi implements the Sportsbook Odds Fetcher (C3): per-sport
// batch fetch of H2H/totals/spreads offerings from the aggregate odds API.
package oddsapi

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"mispricing-detector/internal/models"
	"mispricing-detector/pkg/ratelimit"
)

// Config configures a new oddsapi.Client.
type Config struct {
	APIKey     string
	BaseURL    string
	Regions    string // "us,uk,eu"
	OddsFormat string // "decimal"
	Markets    string // "h2h,totals,spreads"
	Rate       float64
	Burst      int
	Timeout    time.Duration
}

// Client fetches games and bookmaker odds for a single sport at a time.
type Client struct {
	http    *resty.Client
	cfg     Config
	limiter *ratelimit.RateLimiter
	logger  *zap.Logger
}

// New builds an odds API client over go-resty, configured for retry-aware
// requests to the aggregate odds API.
func New(cfg Config, logger *zap.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	rate := cfg.Rate
	if rate <= 0 {
		rate = 3
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = int(rate * 2)
	}

	httpClient := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(timeout).
		SetRetryCount(3).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(5 * time.Second).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			if err != nil {
				return true
			}
			return r.StatusCode() >= 500
		})

	return &Client{
		http:    httpClient,
		cfg:     cfg,
		limiter: ratelimit.NewRateLimiter(rate, float64(burst)),
		logger:  logger,
	}
}

// oddsAPIGame mirrors one element of the odds API's response array.
type oddsAPIGame struct {
	ID           string             `json:"id"`
	CommenceTime string             `json:"commence_time"`
	HomeTeam     string             `json:"home_team"`
	AwayTeam     string             `json:"away_team"`
	Bookmakers   []oddsAPIBookmaker `json:"bookmakers"`
}

type oddsAPIBookmaker struct {
	Key     string           `json:"key"`
	Title   string           `json:"title"`
	Markets []oddsAPIMarket `json:"markets"`
}

type oddsAPIMarket struct {
	Key      string            `json:"key"`
	Outcomes []oddsAPIOutcome `json:"outcomes"`
}

type oddsAPIOutcome struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// FetchSport fetches all current games for one sport endpoint. Only games
// with >= 2 bookmakers participate in downstream consensus (§4.3) -
// FetchSport still returns single-bookmaker games so the caller can account
// for them in diagnostics, but callers should filter with HasConsensus.
func (c *Client) FetchSport(ctx context.Context, sportKey string) ([]*models.BookmakerGame, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("odds api rate limiter wait cancelled: %w", err)
	}

	var raw []oddsAPIGame
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"apiKey":     c.cfg.APIKey,
			"markets":    c.cfg.Markets,
			"regions":    c.cfg.Regions,
			"oddsFormat": c.cfg.OddsFormat,
		}).
		SetResult(&raw).
		Get(fmt.Sprintf("/v4/sports/%s/odds", sportKey))
	if err != nil {
		return nil, fmt.Errorf("fetch odds for sport %s: %w", sportKey, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("fetch odds for sport %s: status %d", sportKey, resp.StatusCode())
	}

	games := make([]*models.BookmakerGame, 0, len(raw))
	for _, g := range raw {
		games = append(games, convertGame(sportKey, g))
	}
	return games, nil
}

func convertGame(sportKey string, g oddsAPIGame) *models.BookmakerGame {
	game := &models.BookmakerGame{
		ID:           g.ID,
		SportKey:     sportKey,
		HomeTeam:     g.HomeTeam,
		AwayTeam:     g.AwayTeam,
		CommenceTime: g.CommenceTime,
		Bookmakers:   make([]models.BookmakerOdds, 0, len(g.Bookmakers)),
	}
	for _, bk := range g.Bookmakers {
		odds := models.BookmakerOdds{Key: bk.Key, Markets: make([]models.BookmakerMarket, 0, len(bk.Markets))}
		for _, m := range bk.Markets {
			market := models.BookmakerMarket{Key: m.Key, Outcomes: make([]models.BookmakerOutcome, 0, len(m.Outcomes))}
			for _, o := range m.Outcomes {
				market.Outcomes = append(market.Outcomes, models.BookmakerOutcome{Name: o.Name, Price: o.Price})
			}
			odds.Markets = append(odds.Markets, market)
		}
		game.Bookmakers = append(game.Bookmakers, odds)
	}
	return game
}

// HasConsensus reports whether a game has enough independent bookmakers to
// participate in the Fair Probability Engine's consensus (§4.3: >= 2).
func HasConsensus(g *models.BookmakerGame) bool {
	return g != nil && len(g.Bookmakers) >= 2
}
