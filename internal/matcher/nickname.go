package matcher

import (
	"strings"

	"mispricing-detector/internal/models"
	"mispricing-detector/internal/sportconfig"
)

// nicknameMatch implements tier 2 (§4.4 step 2): expand both halves of the
// exchange title via the per-sport nickname table, require both resolve,
// filter candidates to those whose team names contain the expanded
// nicknames, then re-run the direct matcher on the filtered list.
func nicknameMatch(sportCode, yesTeam, noTeam string, games []*models.BookmakerGame) *models.BookmakerGame {
	fullYes, fullNo, ok := sportconfig.ExpandBothTeams(sportCode, yesTeam, noTeam)
	if !ok {
		return nil
	}

	var filtered []*models.BookmakerGame
	for _, g := range games {
		if gameContainsTeam(g, fullYes) || gameContainsTeam(g, fullNo) {
			filtered = append(filtered, g)
		}
	}
	if len(filtered) == 0 {
		return nil
	}

	expandedText := fullYes + " vs " + fullNo
	return directMatch(expandedText, filtered)
}

func gameContainsTeam(g *models.BookmakerGame, team string) bool {
	normTeam := models.NormalizeName(team)
	if normTeam == "" {
		return false
	}
	normHome := models.NormalizeName(g.HomeTeam)
	normAway := models.NormalizeName(g.AwayTeam)
	return strings.Contains(normHome, normTeam) || strings.Contains(normTeam, normHome) ||
		strings.Contains(normAway, normTeam) || strings.Contains(normTeam, normAway)
}
