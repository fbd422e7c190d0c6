package exchangeapi

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"mispricing-detector/internal/httpx"
	"mispricing-detector/pkg/ratelimit"
	"mispricing-detector/pkg/retry"
)

const defaultChunkSize = 50

// Client fetches batched quotes from the exchange's price API.
type Client struct {
	http      *resty.Client
	chunkSize int
	limiter   *ratelimit.RateLimiter
	logger    *zap.Logger
}

// Config configures a new exchangeapi.Client.
type Config struct {
	BaseURL   string
	ChunkSize int // §4.2: chunk at 50 tokens per call
	Rate      float64
	Burst     int
}

// New builds an exchange quote client. Request building goes through
// go-resty, the same as oddsapi and llmresolver, layered over the shared
// pooled transport httpx.Global() provides.
func New(cfg Config, logger *zap.Logger) *Client {
	chunkSize := cfg.ChunkSize
	if chunkSize <= 0 {
		chunkSize = defaultChunkSize
	}
	rate := cfg.Rate
	if rate <= 0 {
		rate = 5
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = int(rate * 2)
	}

	httpClient := resty.NewWithClient(httpx.Global().StdClient()).
		SetBaseURL(cfg.BaseURL)

	return &Client{
		http:      httpClient,
		chunkSize: chunkSize,
		limiter:   ratelimit.NewRateLimiter(rate, float64(burst)),
		logger:    logger,
	}
}

// FetchQuotes batch-fetches quotes for every given YES token ID, chunked at
// chunkSize tokens per call (§4.2). A chunk failure (non-2xx, timeout, parse
// error) is logged and the remaining chunks continue - partial maps are the
// norm, not an error, so FetchQuotes itself never returns an error for
// per-chunk failures.
func (c *Client) FetchQuotes(ctx context.Context, tokenIDs []string) map[string]Quote {
	result := make(map[string]Quote, len(tokenIDs))

	for start := 0; start < len(tokenIDs); start += c.chunkSize {
		end := start + c.chunkSize
		if end > len(tokenIDs) {
			end = len(tokenIDs)
		}
		chunk := tokenIDs[start:end]

		if err := c.limiter.Wait(ctx); err != nil {
			c.logger.Warn("exchange quote chunk aborted: rate limiter wait cancelled", zap.Error(err))
			return result
		}

		quotes, err := c.fetchChunk(ctx, chunk)
		if err != nil {
			c.logger.Warn("exchange quote chunk failed, continuing with partial map",
				zap.Int("chunk_start", start), zap.Int("chunk_size", len(chunk)), zap.Error(err))
			continue
		}
		for tokenID, q := range quotes {
			result[tokenID] = q
		}
	}

	return result
}

// fetchChunk posts one {token_id, side} pair per side needed and decodes the
// exchange's per-token-keyed response object (§6).
func (c *Client) fetchChunk(ctx context.Context, tokenIDs []string) (map[string]Quote, error) {
	requestBody := make([]priceSideRequest, 0, len(tokenIDs)*2)
	for _, id := range tokenIDs {
		requestBody = append(requestBody,
			priceSideRequest{TokenID: id, Side: "BUY"},
			priceSideRequest{TokenID: id, Side: "SELL"},
		)
	}

	var sides map[string]priceSides
	err := retry.Do(ctx, func() error {
		var parsed map[string]priceSides
		res, err := c.http.R().
			SetContext(ctx).
			SetBody(requestBody).
			SetResult(&parsed).
			Post("/prices")
		if err != nil {
			return err
		}
		if res.IsError() {
			return fmt.Errorf("exchange price endpoint returned status %d", res.StatusCode())
		}
		sides = parsed
		return nil
	}, retry.AggressiveConfig())
	if err != nil {
		return nil, err
	}

	quotes := make(map[string]Quote, len(sides))
	for tokenID, s := range sides {
		q := Quote{}
		if ask, err := parseDecimalPrice(s.BUY); err == nil {
			q.Ask = ask
			q.HasAsk = true
		}
		if bid, err := parseDecimalPrice(s.SELL); err == nil {
			q.Bid = bid
			q.HasBid = true
		}
		if mid, ok := q.Mid(); ok && mid > 0 {
			q.SpreadPct = (q.Ask - q.Bid) / mid * 100
		}
		quotes[tokenID] = q
	}

	c.mergeAbsoluteSpreads(ctx, tokenIDs, quotes)

	return quotes, nil
}

// mergeAbsoluteSpreads attempts the spreads endpoint and overwrites the
// synthesized spread with the exchange's own measured value where available,
// converting that absolute (price-unit) spread to a percentage of mid; tokens
// without a mid are left unchanged. Failures here are non-fatal
// since SpreadPct already has a fallback.
func (c *Client) mergeAbsoluteSpreads(ctx context.Context, tokenIDs []string, quotes map[string]Quote) {
	requestBody := make([]spreadTokenRequest, len(tokenIDs))
	for i, id := range tokenIDs {
		requestBody[i] = spreadTokenRequest{TokenID: id}
	}

	var spreads map[string]string
	res, err := c.http.R().
		SetContext(ctx).
		SetBody(requestBody).
		SetResult(&spreads).
		Post("/spreads")
	if err != nil || res.IsError() {
		return
	}

	for tokenID, raw := range spreads {
		q, ok := quotes[tokenID]
		if !ok {
			continue
		}
		spread, err := parseDecimalPrice(raw)
		if err != nil {
			continue
		}
		mid, ok := q.Mid()
		if !ok || mid <= 0 {
			continue
		}
		q.SpreadPct = spread / mid * 100
		quotes[tokenID] = q
	}
}

func parseDecimalPrice(raw string) (float64, error) {
	if raw == "" {
		return 0, fmt.Errorf("empty price string")
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return 0, fmt.Errorf("parse decimal price %q: %w", raw, err)
	}
	f, _ := d.Float64()
	return f, nil
}
