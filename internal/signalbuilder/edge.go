// Package signalbuilder implements the Signal Builder (C7): the decision
// authority that turns a matched game's fair probabilities into a trade
// recommendation, subject to an ordered set of safety rails.
package signalbuilder

import (
	"strings"
	"time"

	"mispricing-detector/internal/models"
)

// SkipReason names why a market produced no signal this pass. An empty
// SkipReason means a signal was produced.
type SkipReason string

const (
	SkipNone                  SkipReason = ""
	SkipEventExpired          SkipReason = "EVENT_EXPIRED"
	SkipBestEdgeNotPositive   SkipReason = "BEST_EDGE_NOT_POSITIVE"
	SkipNoTokenID             SkipReason = "NO_TOKEN_ID_SKIP"
	SkipDualMappingBlock      SkipReason = "DUAL_MAPPING_BLOCK"
	SkipStaleHighProb         SkipReason = "STALE_HIGH_PROB_SKIP"
	SkipFinalGateContradiction SkipReason = "FINAL_GATE_CONTRADICTION"
	SkipNoTrigger             SkipReason = "NO_TRIGGER_SKIP"
)

const (
	dualMappingBestAMax = 0.01
	dualMappingBestBMin = 0.05
	staleHighProbFair   = 0.85
	staleBound          = 3 * time.Minute
	extremeEdgeFairMin  = 0.90
	extremeEdgeCap      = 0.40
)

// chosenSide is the intermediate state of the edge algebra / rails
// pipeline, carried through each rail in order.
type chosenSide struct {
	side               models.Side
	rawEdge            float64
	fairProb           float64
	recommendedOutcome string
	gateNotes          []string
}

// edgePair holds both sides' raw edges, computed once and reused by the
// dual-mapping rail and by the outcome-consistency rail's forced flip.
type edgePair struct {
	yesEdge, noEdge             float64
	yesFair, noFair             float64
	yesTeamName, noTeamName     string
}

func computeEdges(liveYesPrice, yesFair, noFair float64, yesTeamName, noTeamName string) edgePair {
	return edgePair{
		yesEdge:     yesFair - liveYesPrice,
		noEdge:      noFair - (1 - liveYesPrice),
		yesFair:     yesFair,
		noFair:      noFair,
		yesTeamName: yesTeamName,
		noTeamName:  noTeamName,
	}
}

func (e edgePair) forSide(side models.Side) chosenSide {
	if side == models.SideYes {
		return chosenSide{side: models.SideYes, rawEdge: e.yesEdge, fairProb: e.yesFair, recommendedOutcome: e.yesTeamName}
	}
	return chosenSide{side: models.SideNo, rawEdge: e.noEdge, fairProb: e.noFair, recommendedOutcome: e.noTeamName}
}

// pickSide implements §4.7's edge algebra: yes_edge = yes_fair - live_yes_price,
// no_edge = no_fair - (1 - live_yes_price); the larger positive edge wins.
func pickSide(edges edgePair) (chosenSide, bool) {
	if edges.yesEdge <= 0 && edges.noEdge <= 0 {
		return chosenSide{}, false
	}
	if edges.yesEdge >= edges.noEdge {
		return edges.forSide(models.SideYes), true
	}
	return edges.forSide(models.SideNo), true
}

// applyDualMappingRail implements rail 2: recompute edges under the
// assumption live_yes_price was mis-assigned to the wrong side; if the
// as-chosen best edge is near zero while the swapped-assumption best edge
// is large, the mapping is almost certainly inverted and the market blocks.
func applyDualMappingRail(liveYesPrice float64, edges edgePair) bool {
	yesEdgeB := edges.yesFair - (1 - liveYesPrice)
	noEdgeB := edges.noFair - liveYesPrice

	bestA := maxFloat(edges.yesEdge, edges.noEdge)
	bestB := maxFloat(yesEdgeB, noEdgeB)

	return bestA < dualMappingBestAMax && bestB > dualMappingBestBMin
}

// inferSideFromOverlap implements the word-overlap re-derivation used by
// rails 3 and 6: which of exchangeYesTeam/exchangeNoTeam does
// recommendedOutcome share the most normalized tokens with. Returns ""
// if recommendedOutcome shares no meaningful overlap with either.
func inferSideFromOverlap(recommendedOutcome, exchangeYesTeam, exchangeNoTeam string) models.Side {
	outcomeTokens := significantTokenSet(recommendedOutcome)
	if len(outcomeTokens) == 0 {
		return ""
	}

	yesScore := sharedCount(outcomeTokens, significantTokenSet(exchangeYesTeam))
	noScore := sharedCount(outcomeTokens, significantTokenSet(exchangeNoTeam))

	switch {
	case yesScore == 0 && noScore == 0:
		return ""
	case yesScore >= noScore:
		return models.SideYes
	default:
		return models.SideNo
	}
}

func significantTokenSet(s string) map[string]bool {
	set := make(map[string]bool)
	for _, w := range strings.Fields(models.NormalizeName(s)) {
		if len(w) > 2 {
			set[w] = true
		}
	}
	return set
}

func sharedCount(a, b map[string]bool) int {
	n := 0
	for w := range a {
		if b[w] {
			n++
		}
	}
	return n
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
