// Package llmresolver implements the capped, isolated external LLM
// resolution tier of the Event Matcher (§4.4 tier 4). The core matcher is
// fully functional without it; tiers 1-3 handle the majority of matches.
package llmresolver

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// Confidence is the resolver's self-reported match confidence.
type Confidence string

const (
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

// Resolution is the LLM resolver's answer for one exchange event title.
type Resolution struct {
	HomeTeam   string
	AwayTeam   string
	Confidence Confidence
}

// Resolver is the interface the matcher depends on; an interface boundary
// keeps the core detector fully functional when no LLM key is configured.
type Resolver interface {
	Resolve(ctx context.Context, exchangeTitle, sportCode string) (*Resolution, error)
}

// Config configures the capped LLM resolver tier.
type Config struct {
	APIKey      string
	BaseURL     string
	MaxCallsPass int           // §4.4 tier 4: hard cap, <= 15 calls/pass
	CallTimeout time.Duration // §4.4 tier 4: 8s per call
}

// Client is a resty-backed external LLM resolver, quota-capped per pass.
type Client struct {
	http         *resty.Client
	maxCallsPass int
	callTimeout  time.Duration
	logger       *zap.Logger

	mu       sync.Mutex
	callsUsed int
}

// New builds a capped LLM resolver client. If cfg.APIKey is empty, callers
// should treat the LLM tier as disabled and skip construction entirely.
func New(cfg Config, logger *zap.Logger) *Client {
	timeout := cfg.CallTimeout
	if timeout <= 0 {
		timeout = 8 * time.Second
	}
	maxCalls := cfg.MaxCallsPass
	if maxCalls <= 0 {
		maxCalls = 15
	}

	httpClient := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(timeout).
		SetHeader("Authorization", "Bearer "+cfg.APIKey).
		SetHeader("Content-Type", "application/json")

	return &Client{
		http:         httpClient,
		maxCallsPass: maxCalls,
		callTimeout:  timeout,
		logger:       logger,
	}
}

// ResetPassQuota must be called once at the start of each pass so the
// per-pass call cap is enforced correctly (§4.4 tier 4: <=15 calls/pass).
func (c *Client) ResetPassQuota() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.callsUsed = 0
}

type resolveRequest struct {
	ExchangeTitle string `json:"exchange_title"`
	SportCode     string `json:"sport_code"`
}

type resolveResponse struct {
	HomeTeam   string `json:"home_team"`
	AwayTeam   string `json:"away_team"`
	Confidence string `json:"confidence"`
}

// Resolve calls the external resolver once, subject to the per-pass call
// cap and per-call timeout. Low-confidence responses are rejected outright.
// Validation against the original title (at least one resolved nickname
// must appear in exchangeTitle) is the caller's responsibility per §4.4,
// since that check also needs the per-sport nickname table.
func (c *Client) Resolve(ctx context.Context, exchangeTitle, sportCode string) (*Resolution, error) {
	c.mu.Lock()
	if c.callsUsed >= c.maxCallsPass {
		c.mu.Unlock()
		return nil, fmt.Errorf("llm resolver: per-pass call cap (%d) exhausted", c.maxCallsPass)
	}
	c.callsUsed++
	c.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, c.callTimeout)
	defer cancel()

	var resp resolveResponse
	res, err := c.http.R().
		SetContext(ctx).
		SetBody(resolveRequest{ExchangeTitle: exchangeTitle, SportCode: sportCode}).
		SetResult(&resp).
		Post("/resolve")
	if err != nil {
		return nil, fmt.Errorf("llm resolver call: %w", err)
	}
	if res.IsError() {
		return nil, fmt.Errorf("llm resolver call: status %d", res.StatusCode())
	}

	confidence := Confidence(strings.ToLower(resp.Confidence))
	if confidence == ConfidenceLow {
		return nil, fmt.Errorf("llm resolver: confidence=low, rejected")
	}

	return &Resolution{
		HomeTeam:   resp.HomeTeam,
		AwayTeam:   resp.AwayTeam,
		Confidence: confidence,
	}, nil
}

// ValidateAgainstTitle enforces §4.4 tier 4's guard: at least one of the
// resolved teams' nicknames must appear in the original exchange title,
// otherwise the resolution is rejected (and the caller should cache null).
func ValidateAgainstTitle(res *Resolution, exchangeTitle string, nicknameAppears func(title, team string) bool) bool {
	if res == nil {
		return false
	}
	title := strings.ToLower(exchangeTitle)
	return nicknameAppears(title, res.HomeTeam) || nicknameAppears(title, res.AwayTeam)
}
