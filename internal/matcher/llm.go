package matcher

import (
	"context"

	"mispricing-detector/internal/llmresolver"
	"mispricing-detector/internal/models"
)

// llmMatch implements tier 4 (§4.4 step 4): resolve the exchange title via
// the capped external LLM resolver, then re-run the direct matcher on
// games whose team names contain the resolved teams. svc may be nil when
// the LLM tier is disabled, in which case this tier always misses.
func llmMatch(ctx context.Context, svc *llmresolver.Service, eventText, sportCode string, games []*models.BookmakerGame) *models.BookmakerGame {
	if svc == nil {
		return nil
	}

	res, ok := svc.Resolve(ctx, eventText, sportCode)
	if !ok {
		return nil
	}

	var filtered []*models.BookmakerGame
	for _, g := range games {
		if gameContainsTeam(g, res.HomeTeam) || gameContainsTeam(g, res.AwayTeam) {
			filtered = append(filtered, g)
		}
	}
	if len(filtered) == 0 {
		return nil
	}

	resolvedText := res.HomeTeam + " vs " + res.AwayTeam
	if matched := directMatch(resolvedText, filtered); matched != nil {
		return matched
	}
	// Fall back to the original exchange text against the narrowed list,
	// in case the resolver reordered or abbreviated the names.
	return directMatch(eventText, filtered)
}
