package matcher

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"mispricing-detector/internal/llmresolver"
	"mispricing-detector/internal/models"
	"mispricing-detector/pkg/utils"
)

// maxEventDateDelta enforces §4.4: if the exchange event date and the
// bookmaker commence time differ by more than this, the game is skipped
// to prevent cross-game mismatches for recurring matchups (e.g. a team's
// game next week vs. this week).
const maxEventDateDelta = 24 * time.Hour

// Matcher resolves one watched exchange market to exactly one bookmaker
// game, identifying the YES/NO outcome indices for H2H markets (§4.4).
type Matcher struct {
	llm    *llmresolver.Service
	logger *zap.Logger
}

// New builds an Event Matcher. llm may be nil to disable tier 4 entirely.
func New(llm *llmresolver.Service, logger *zap.Logger) *Matcher {
	return &Matcher{llm: llm, logger: logger}
}

// Match resolves market against candidates (the sport's full game list for
// this pass) and returns a MatchResult, or an error describing why no tier
// produced a usable match.
func (m *Matcher) Match(ctx context.Context, market *models.WatchedMarket, candidates []*models.BookmakerGame, now time.Time) (*models.MatchResult, error) {
	yesTeam, noTeam, ok := ParseEventTitle(market.EventTitle)
	if !ok {
		return nil, fmt.Errorf("matcher: could not parse %q as \"<yesTeam> vs <noTeam>\"", market.EventTitle)
	}

	eligible := m.applyDateGuards(market, candidates, now)
	if len(eligible) == 0 {
		return nil, fmt.Errorf("matcher: no candidate games survive the date/time guards for %q", market.EventTitle)
	}

	eventText := market.EventTitle

	if g := directMatch(eventText, eligible); g != nil {
		return m.buildResult(g, yesTeam, noTeam, models.MatchTierDirect, 1.0)
	}

	if g := nicknameMatch(market.SportCode, yesTeam, noTeam, eligible); g != nil {
		return m.buildResult(g, yesTeam, noTeam, models.MatchTierNickname, 0.9)
	}

	if g := fuzzyMatch(eventText, eligible); g != nil {
		score := jaccardSimilarity(eventText, g.HomeTeam+" vs "+g.AwayTeam)
		return m.buildResult(g, yesTeam, noTeam, models.MatchTierFuzzy, score)
	}

	if g := llmMatch(ctx, m.llm, eventText, market.SportCode, eligible); g != nil {
		return m.buildResult(g, yesTeam, noTeam, models.MatchTierLLM, 0.75)
	}

	return nil, fmt.Errorf("matcher: all four tiers failed to resolve %q", market.EventTitle)
}

// applyDateGuards implements §4.4's two date/time guards, applied before
// any matcher tier runs:
//   - skip games whose commence time is outside [now-30m, now+24h]
//   - skip games whose commence time differs from the exchange event's
//     own start time by more than 24h
func (m *Matcher) applyDateGuards(market *models.WatchedMarket, candidates []*models.BookmakerGame, now time.Time) []*models.BookmakerGame {
	var eligible []*models.BookmakerGame
	for _, g := range candidates {
		commence, err := time.Parse(time.RFC3339, g.CommenceTime)
		if err != nil {
			m.logger.Warn("matcher: skipping game with unparseable commence_time", zap.String("game_id", g.ID), zap.Error(err))
			continue
		}
		if !utils.IsWithinCommenceWindow(commence, now) {
			continue
		}
		if !market.EventStartTime.IsZero() && utils.EventDateDelta(market.EventStartTime, commence) > maxEventDateDelta {
			continue
		}
		eligible = append(eligible, g)
	}
	return eligible
}

// buildResult resolves YES/NO outcome indices for the matched game's h2h
// market and rejects the match if either index is unresolved or both
// resolve to the same outcome (§4.4).
func (m *Matcher) buildResult(g *models.BookmakerGame, yesTeam, noTeam string, tier models.MatchTier, score float64) (*models.MatchResult, error) {
	outcomes, err := h2hOutcomes(g)
	if err != nil {
		return nil, err
	}

	yesIdx, noIdx := assignOutcomes(yesTeam, noTeam, outcomes)
	if yesIdx == -1 || noIdx == -1 {
		return nil, fmt.Errorf("matcher: could not assign YES/NO outcomes for game %q", g.ID)
	}

	result := &models.MatchResult{
		Game:         g,
		MarketKey:    "h2h",
		YesTeamIndex: yesIdx,
		NoTeamIndex:  noIdx,
		YesTeamName:  outcomes[yesIdx].Name,
		NoTeamName:   outcomes[noIdx].Name,
		MatchTier:    tier,
		MatchScore:   score,
	}
	if !result.IsValid() {
		return nil, fmt.Errorf("matcher: resolved result failed validation for game %q", g.ID)
	}
	return result, nil
}

func h2hOutcomes(g *models.BookmakerGame) ([]models.BookmakerOutcome, error) {
	for _, bm := range g.Bookmakers {
		for _, mkt := range bm.Markets {
			if mkt.Key == "h2h" && len(mkt.Outcomes) > 0 {
				return mkt.Outcomes, nil
			}
		}
	}
	return nil, fmt.Errorf("matcher: game %q has no h2h market", g.ID)
}
