// Package sportconfig provides the Sport/Team Config & Detection lookups
// (C10): sport detection from free text and per-sport team nickname tables.
package sportconfig

import "regexp"

// SupportedSports lists the canonical sport codes the Market Loader accepts
// (§4.1: sport_code ∈ supported_sports).
var SupportedSports = []string{
	"nhl",
	"nba",
	"nfl",
	"mlb",
	"epl",
	"ncaab",
	"ncaaf",
}

// sportPattern pairs a canonical sport code with an ordered detection regex.
type sportPattern struct {
	code    string
	pattern *regexp.Regexp
}

// detectionTable is checked in order; NHL is checked before NBA so
// "Blackhawks" is not mistaken for the NBA "Hawks" pattern (§4.10).
var detectionTable = []sportPattern{
	{"nhl", regexp.MustCompile(`(?i)\b(nhl|blackhawks|bruins|rangers|maple leafs|canadiens|oilers|flyers|penguins|capitals|avalanche|lightning|panthers|devils|islanders|sabres|senators|canucks|kraken|wild|stars|jets|predators|blues|golden knights|ducks|sharks|kings|coyotes|hurricanes|red wings)\b`)},
	{"nba", regexp.MustCompile(`(?i)\b(nba|lakers|celtics|warriors|nets|knicks|bulls|heat|bucks|suns|clippers|mavericks|nuggets|grizzlies|76ers|sixers|hawks|hornets|pistons|pacers|rockets|kings|magic|timberwolves|pelicans|thunder|spurs|raptors|jazz|wizards|cavaliers|trail blazers)\b`)},
	{"nfl", regexp.MustCompile(`(?i)\b(nfl|patriots|chiefs|cowboys|packers|steelers|eagles|49ers|niners|giants|jets|bills|dolphins|ravens|bengals|broncos|raiders|chargers|colts|titans|jaguars|texans|browns|commanders|vikings|lions|bears|saints|falcons|panthers|buccaneers|rams|seahawks|cardinals)\b`)},
	{"mlb", regexp.MustCompile(`(?i)\b(mlb|yankees|red sox|dodgers|giants|cubs|mets|astros|braves|phillies|cardinals|brewers|padres|rangers|blue jays|guardians|twins|rays|orioles|tigers|royals|white sox|athletics|angels|mariners|diamondbacks|rockies|marlins|nationals|pirates|reds)\b`)},
	{"epl", regexp.MustCompile(`(?i)\b(premier league|epl|man utd|manchester united|manchester city|man city|liverpool|chelsea|arsenal|tottenham|spurs|newcastle|west ham|aston villa|brighton|everton|wolves|fulham|crystal palace|nottingham forest|bournemouth|brentford|leicester|southampton)\b`)},
	{"ncaab", regexp.MustCompile(`(?i)\b(ncaab|college basketball|march madness)\b`)},
	{"ncaaf", regexp.MustCompile(`(?i)\b(ncaaf|college football|cfb)\b`)},
}

// DetectSport returns the canonical sport code matched in free text
// (event_title ++ question), checked in the fixed detectionTable order, and
// whether a match was found at all.
func DetectSport(text string) (string, bool) {
	for _, entry := range detectionTable {
		if entry.pattern.MatchString(text) {
			return entry.code, true
		}
	}
	return "", false
}

// IsSupported reports whether code is one of SupportedSports.
func IsSupported(code string) bool {
	for _, s := range SupportedSports {
		if s == code {
			return true
		}
	}
	return false
}

// oddsAPISportKeys maps a canonical sport code to the odds API's own sport
// key, used by the Sportsbook Odds Fetcher (C3) to build its endpoint path.
var oddsAPISportKeys = map[string]string{
	"nhl":   "icehockey_nhl",
	"nba":   "basketball_nba",
	"nfl":   "americanfootball_nfl",
	"mlb":   "baseball_mlb",
	"epl":   "soccer_epl",
	"ncaab": "basketball_ncaab",
	"ncaaf": "americanfootball_ncaaf",
}

// OddsAPISportKey translates a canonical sport code into the odds API's
// sport key. Returns false for codes with no known mapping.
func OddsAPISportKey(code string) (string, bool) {
	key, ok := oddsAPISportKeys[code]
	return key, ok
}

// SharpBooks is the curated set of sharp bookmakers that receive extra
// weight in the Fair Probability Engine and alone can confirm movement in
// the Movement Detector (§4.5 step 4, §4.6).
var SharpBooks = map[string]bool{
	"pinnacle":  true,
	"betfair":   true,
	"betonline": true,
	"bookmaker": true,
	"circa":     true,
}

// SharpBookWeight returns the Fair Probability Engine's per-book weight:
// 1.5 for a curated sharp book, 1.0 otherwise.
func SharpBookWeight(bookmakerKey string) float64 {
	if SharpBooks[bookmakerKey] {
		return 1.5
	}
	return 1.0
}
