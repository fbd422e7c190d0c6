package matcher

import (
	"strings"

	"mispricing-detector/internal/models"
)

// significantWords returns the normalized, non-trivial (len > 2) words of s.
func significantWords(s string) []string {
	words := strings.Fields(models.NormalizeName(s))
	out := words[:0]
	for _, w := range words {
		if len(w) > 2 {
			out = append(out, w)
		}
	}
	return out
}

// anyWordIn reports whether any of words appears in the normalized text.
func anyWordIn(words []string, text string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}

// directMatch implements tier 1 (§4.4 step 1): a game qualifies only if at
// least one non-trivial word from its home team and at least one from its
// away team both appear somewhere in the normalized exchange text. Returns
// the single qualifying game, or nil if zero or more than one qualify
// (ambiguous matches are rejected, not guessed).
func directMatch(eventText string, games []*models.BookmakerGame) *models.BookmakerGame {
	normalizedText := models.NormalizeName(eventText)

	var matched *models.BookmakerGame
	for _, g := range games {
		homeWords := significantWords(g.HomeTeam)
		awayWords := significantWords(g.AwayTeam)
		if len(homeWords) == 0 || len(awayWords) == 0 {
			continue
		}
		if anyWordIn(homeWords, normalizedText) && anyWordIn(awayWords, normalizedText) {
			if matched != nil {
				return nil // ambiguous: more than one candidate qualifies
			}
			matched = g
		}
	}
	return matched
}

// assignOutcomes resolves the YES/NO outcome indices within an h2h market
// via the three-stage team-to-outcome assignment (§4.4):
//
//	(a) exact normalized match on full team name (after stripping affixes)
//	(b) substring containment in either direction
//	(c) token-overlap scoring requiring >= 2 shared tokens, best score wins
//
// The match is rejected (both indices -1) if either team fails to resolve
// or if both resolve to the same outcome index.
func assignOutcomes(yesTeam, noTeam string, outcomes []models.BookmakerOutcome) (yesIdx, noIdx int) {
	yesIdx = findOutcomeIndex(yesTeam, outcomes, -1)
	noIdx = findOutcomeIndex(noTeam, outcomes, yesIdx)

	if yesIdx == -1 || noIdx == -1 || yesIdx == noIdx {
		return -1, -1
	}
	return yesIdx, noIdx
}

// findOutcomeIndex resolves team to an outcome index, excluding exclude
// (used to prevent double-mapping both teams to the same outcome).
func findOutcomeIndex(team string, outcomes []models.BookmakerOutcome, exclude int) int {
	normTeam := models.NormalizeName(team)
	if normTeam == "" {
		return -1
	}

	// (a) exact normalized match
	for i, o := range outcomes {
		if i == exclude {
			continue
		}
		if models.NormalizeName(o.Name) == normTeam {
			return i
		}
	}

	// (b) substring containment in either direction
	for i, o := range outcomes {
		if i == exclude {
			continue
		}
		normOutcome := models.NormalizeName(o.Name)
		if normOutcome == "" {
			continue
		}
		if strings.Contains(normOutcome, normTeam) || strings.Contains(normTeam, normOutcome) {
			return i
		}
	}

	// (c) token-overlap scoring, >= 2 shared tokens, best score wins
	teamTokens := tokenSet(normTeam)
	bestIdx, bestScore := -1, 0
	for i, o := range outcomes {
		if i == exclude {
			continue
		}
		score := sharedTokenCount(teamTokens, tokenSet(models.NormalizeName(o.Name)))
		if score >= 2 && score > bestScore {
			bestIdx, bestScore = i, score
		}
	}
	return bestIdx
}

func tokenSet(s string) map[string]bool {
	set := make(map[string]bool)
	for _, w := range strings.Fields(s) {
		set[w] = true
	}
	return set
}

func sharedTokenCount(a, b map[string]bool) int {
	count := 0
	for w := range a {
		if b[w] {
			count++
		}
	}
	return count
}
