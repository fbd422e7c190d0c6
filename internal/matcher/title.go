// Package matcher implements the Event Matcher (§4.4): resolving one
// watched exchange market to exactly one sportsbook game, and identifying
// which bookmaker outcome is the exchange's YES side and which is NO.
package matcher

import "strings"

// ParseEventTitle splits an exchange event title of the form
// "<yesTeam> vs <noTeam>" (optionally suffixed with " - ..."). This
// ordering is the source of truth for YES/NO assignment and must never be
// inferred from anything else.
func ParseEventTitle(title string) (yesTeam, noTeam string, ok bool) {
	title = strings.TrimSpace(title)
	if idx := strings.Index(title, " - "); idx >= 0 {
		title = title[:idx]
	}

	const sep = " vs "
	idx := strings.Index(strings.ToLower(title), sep)
	if idx < 0 {
		return "", "", false
	}
	yesTeam = strings.TrimSpace(title[:idx])
	noTeam = strings.TrimSpace(title[idx+len(sep):])
	if yesTeam == "" || noTeam == "" {
		return "", "", false
	}
	return yesTeam, noTeam, true
}
