package matcher

import (
	"strings"

	"mispricing-detector/internal/models"
)

// jaccardSimilarity computes word-overlap similarity between two strings:
// |intersection| / |union| of their normalized word sets.
func jaccardSimilarity(a, b string) float64 {
	setA := tokenSet(models.NormalizeName(a))
	setB := tokenSet(models.NormalizeName(b))
	if len(setA) == 0 || len(setB) == 0 {
		return 0
	}

	intersection := 0
	union := make(map[string]bool, len(setA)+len(setB))
	for w := range setA {
		union[w] = true
		if setB[w] {
			intersection++
		}
	}
	for w := range setB {
		union[w] = true
	}
	if len(union) == 0 {
		return 0
	}
	return float64(intersection) / float64(len(union))
}

// lastSignificantWord returns the last non-trivial (len > 2) normalized
// word of s, used as the "nickname" guard for the fuzzy tier.
func lastSignificantWord(s string) string {
	words := significantWords(s)
	if len(words) == 0 {
		return ""
	}
	return words[len(words)-1]
}

const fuzzyMatchThreshold = 0.5

// fuzzyMatch implements tier 3 (§4.4 step 3): Jaccard-like word-overlap
// similarity between the normalized exchange title and "home vs away" for
// each candidate, subject to the guard that at least one team's nickname
// (its last significant word) appears in the exchange text. Returns the
// single best-scoring game at or above the threshold, or nil.
func fuzzyMatch(eventText string, games []*models.BookmakerGame) *models.BookmakerGame {
	normalizedText := models.NormalizeName(eventText)

	var best *models.BookmakerGame
	bestScore := 0.0
	for _, g := range games {
		homeNick := lastSignificantWord(g.HomeTeam)
		awayNick := lastSignificantWord(g.AwayTeam)
		if homeNick == "" && awayNick == "" {
			continue
		}
		if !strings.Contains(normalizedText, homeNick) && !strings.Contains(normalizedText, awayNick) {
			continue
		}

		candidateText := g.HomeTeam + " vs " + g.AwayTeam
		score := jaccardSimilarity(eventText, candidateText)
		if score >= fuzzyMatchThreshold && score > bestScore {
			best, bestScore = g, score
		}
	}
	return best
}
