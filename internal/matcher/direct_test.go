package matcher

import (
	"testing"

	"mispricing-detector/internal/models"
)

func TestDirectMatch_SingleCandidateQualifies(t *testing.T) {
	games := []*models.BookmakerGame{
		{ID: "g1", HomeTeam: "Chicago Blackhawks", AwayTeam: "Detroit Red Wings"},
		{ID: "g2", HomeTeam: "Boston Bruins", AwayTeam: "New York Rangers"},
	}

	g := directMatch("Chicago Blackhawks vs Detroit Red Wings", games)
	if g == nil || g.ID != "g1" {
		t.Fatalf("expected g1, got %+v", g)
	}
}

func TestDirectMatch_NoCandidateQualifies(t *testing.T) {
	games := []*models.BookmakerGame{
		{ID: "g1", HomeTeam: "Boston Bruins", AwayTeam: "New York Rangers"},
	}
	if g := directMatch("Chicago Blackhawks vs Detroit Red Wings", games); g != nil {
		t.Errorf("expected no match, got %+v", g)
	}
}

func TestDirectMatch_AmbiguousRejected(t *testing.T) {
	games := []*models.BookmakerGame{
		{ID: "g1", HomeTeam: "New York Rangers", AwayTeam: "Boston Bruins"},
		{ID: "g2", HomeTeam: "New York Islanders", AwayTeam: "Boston Bruins"},
	}
	// "new york" and "boston" both appear; both games would qualify under a
	// naive word check, so ambiguity must be rejected rather than guessed.
	if g := directMatch("New York vs Boston Bruins preview", games); g != nil {
		t.Errorf("expected ambiguous match to be rejected, got %+v", g)
	}
}

func TestAssignOutcomes(t *testing.T) {
	outcomes := []models.BookmakerOutcome{
		{Name: "Chicago Blackhawks", Price: 1.8},
		{Name: "Detroit Red Wings", Price: 2.1},
	}

	yesIdx, noIdx := assignOutcomes("Chicago Blackhawks", "Detroit Red Wings", outcomes)
	if yesIdx != 0 || noIdx != 1 {
		t.Errorf("got (%d, %d), want (0, 1)", yesIdx, noIdx)
	}
}

func TestAssignOutcomes_SubstringContainment(t *testing.T) {
	outcomes := []models.BookmakerOutcome{
		{Name: "Montreal Canadiens"},
		{Name: "Toronto Maple Leafs"},
	}
	yesIdx, noIdx := assignOutcomes("Canadiens", "Maple Leafs", outcomes)
	if yesIdx != 0 || noIdx != 1 {
		t.Errorf("got (%d, %d), want (0, 1)", yesIdx, noIdx)
	}
}

func TestAssignOutcomes_RejectsSameOutcome(t *testing.T) {
	outcomes := []models.BookmakerOutcome{
		{Name: "Chicago Blackhawks"},
	}
	yesIdx, noIdx := assignOutcomes("Chicago Blackhawks", "Blackhawks", outcomes)
	if yesIdx != -1 || noIdx != -1 {
		t.Errorf("expected rejection when both teams resolve to the same outcome, got (%d, %d)", yesIdx, noIdx)
	}
}

func TestAssignOutcomes_UnresolvedTeamRejected(t *testing.T) {
	outcomes := []models.BookmakerOutcome{
		{Name: "Chicago Blackhawks"},
		{Name: "Detroit Red Wings"},
	}
	yesIdx, noIdx := assignOutcomes("Chicago Blackhawks", "Some Unrelated Team", outcomes)
	if yesIdx != -1 || noIdx != -1 {
		t.Errorf("expected rejection when a team can't be resolved, got (%d, %d)", yesIdx, noIdx)
	}
}
