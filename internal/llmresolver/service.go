package llmresolver

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"mispricing-detector/internal/models"
)

// cacheTTL is how long a resolution (or rejection) is remembered; §4.11
// keeps this generous since team-name resolutions for a given exchange
// title almost never change between passes.
const cacheTTL = 24 * time.Hour

// Service is the single entry point the matcher calls for tier 4: it
// wraps the capped Client with a cache so repeat titles never re-spend
// the per-pass call budget, and enforces the nickname-must-appear-in-title
// guard before returning a usable resolution.
type Service struct {
	client Resolver
	cache  Cache
	logger *zap.Logger
}

// NewService builds the tier-4 resolver. client may be nil when no LLM
// API key is configured, in which case Resolve always reports a miss.
func NewService(client Resolver, cache Cache, logger *zap.Logger) *Service {
	return &Service{client: client, cache: cache, logger: logger}
}

// Resolve returns a validated resolution for exchangeTitle, or ok=false if
// the LLM tier is disabled, exhausted its per-pass quota, returned a
// low-confidence guess, or the nickname-in-title guard failed. Rejections
// are cached too, so a single bad title doesn't burn quota every pass.
func (s *Service) Resolve(ctx context.Context, exchangeTitle, sportCode string) (*Resolution, bool) {
	if s.client == nil {
		return nil, false
	}

	key := sportCode + "::" + models.NormalizeName(exchangeTitle)
	if cached, hit := s.cache.Get(ctx, key); hit {
		return cached, cached != nil
	}

	res, err := s.client.Resolve(ctx, exchangeTitle, sportCode)
	if err != nil {
		s.logger.Debug("llmresolver: resolution failed", zap.String("title", exchangeTitle), zap.Error(err))
		s.cache.Set(ctx, key, nil, cacheTTL)
		return nil, false
	}

	if !ValidateAgainstTitle(res, exchangeTitle, nicknameAppearsInTitle) {
		s.logger.Warn("llmresolver: resolved teams do not appear in original title, rejecting",
			zap.String("title", exchangeTitle), zap.String("home", res.HomeTeam), zap.String("away", res.AwayTeam))
		s.cache.Set(ctx, key, nil, cacheTTL)
		return nil, false
	}

	s.cache.Set(ctx, key, res, cacheTTL)
	return res, true
}

// nicknameAppearsInTitle checks whether any normalized token of team
// appears as a substring of the (already lowercased) title.
func nicknameAppearsInTitle(title, team string) bool {
	normalized := models.NormalizeName(team)
	if normalized == "" {
		return false
	}
	for _, word := range strings.Fields(normalized) {
		if len(word) < 3 {
			continue
		}
		if strings.Contains(title, word) {
			return true
		}
	}
	return false
}
