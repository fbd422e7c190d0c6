package sportconfig

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"mispricing-detector/internal/models"
)

//go:embed nicknames.yaml
var nicknamesYAML []byte

// nicknameTable maps sport code -> (nickname/city/abbreviation -> full team name).
type nicknameTable map[string]map[string]string

var nicknames nicknameTable

func init() {
	var raw nicknameTable
	if err := yaml.Unmarshal(nicknamesYAML, &raw); err != nil {
		panic(fmt.Sprintf("sportconfig: failed to parse embedded nicknames.yaml: %v", err))
	}
	nicknames = raw
}

// ExpandNickname resolves a nickname, city, or abbreviation to its full team
// name for the given sport (§4.10, used by matcher tier 2). The lookup is
// case-insensitive. Returns the input unchanged and false if no expansion
// exists.
func ExpandNickname(sportCode, name string) (string, bool) {
	table, ok := nicknames[strings.ToLower(sportCode)]
	if !ok {
		return name, false
	}
	full, ok := table[strings.ToLower(models.NormalizeName(name))]
	if !ok {
		return name, false
	}
	return full, true
}

// ExpandBothTeams expands the two halves of an exchange event title
// ("A vs B") into full team names for the matcher's nickname tier. Both
// halves must resolve or the tier rejects the market (§4.4 tier 2).
func ExpandBothTeams(sportCode, teamA, teamB string) (string, string, bool) {
	fullA, okA := ExpandNickname(sportCode, teamA)
	fullB, okB := ExpandNickname(sportCode, teamB)
	if !okA || !okB {
		return "", "", false
	}
	return fullA, fullB, true
}
