package signalbuilder

import (
	"time"

	"go.uber.org/zap"

	"mispricing-detector/internal/models"
)

// Input bundles everything the Signal Builder needs for one watched
// market, after C4 (match) / C5 (fair probability) / C6 (movement) have
// run for it.
type Input struct {
	Market *models.WatchedMarket
	Match  *models.MatchResult

	YesFair float64
	NoFair  float64

	// ExchangeYesTeam/ExchangeNoTeam are the two halves of the original
	// exchange event title (source of truth for YES/NO), as parsed by the
	// matcher. They ground the outcome-side consistency rail (§4.7 rail 3)
	// independent of whatever the matched bookmaker outcome names are.
	ExchangeYesTeam string
	ExchangeNoTeam  string

	YesMovement MovementInput
	NoMovement  MovementInput

	LastPolyRefresh time.Time
	Costs           CostInputs
	Now             time.Time
}

// Builder is the decision authority (C7): it turns fair probabilities and
// movement verdicts into a trade recommendation, subject to the ordered
// safety rails of §4.7.
type Builder struct {
	logger *zap.Logger
}

// New builds a Signal Builder.
func New(logger *zap.Logger) *Builder {
	return &Builder{logger: logger}
}

// Build runs the full edge algebra, safety rails, net-edge calculation,
// dual-trigger system, and tier assignment for one watched market. A
// non-empty SkipReason means the market produced no signal this pass.
func (b *Builder) Build(in Input) (*models.SignalOpportunity, SkipReason, error) {
	if !in.Market.EventStartTime.After(in.Now) {
		return nil, SkipEventExpired, nil
	}

	edges := computeEdges(in.Market.CachedYesPrice, in.YesFair, in.NoFair, in.Match.YesTeamName, in.Match.NoTeamName)
	chosen, ok := pickSide(edges)
	if !ok {
		return nil, SkipBestEdgeNotPositive, nil
	}

	// Rail 1: token-identity.
	if in.Market.YesTokenID == "" {
		return nil, SkipNoTokenID, nil
	}

	// Rail 2: dual-mapping.
	if applyDualMappingRail(in.Market.CachedYesPrice, edges) {
		return nil, SkipDualMappingBlock, nil
	}

	// Rail 3: outcome-side consistency; force a flip if the recommended
	// outcome's word overlap points to the other side.
	var gateNotes []string
	if inferred := inferSideFromOverlap(chosen.recommendedOutcome, in.ExchangeYesTeam, in.ExchangeNoTeam); inferred != "" && inferred != chosen.side {
		chosen = edges.forSide(inferred)
		gateNotes = append(gateNotes, "OUTCOME_SIDE_FORCED_FLIP")
	}

	// Rail 4: staleness.
	staleness := in.Now.Sub(in.LastPolyRefresh)
	if chosen.fairProb >= staleHighProbFair && staleness > staleBound {
		return nil, SkipStaleHighProb, nil
	}

	// Rail 5: extreme-edge cap.
	if chosen.fairProb >= extremeEdgeFairMin && chosen.rawEdge > extremeEdgeCap {
		chosen.rawEdge = extremeEdgeCap
		gateNotes = append(gateNotes, "EXTREME_EDGE_CAPPED")
	}

	// Rail 6: final gate -- re-verify word overlap; contradiction skips
	// the signal entirely rather than forcing another flip.
	if final := inferSideFromOverlap(chosen.recommendedOutcome, in.ExchangeYesTeam, in.ExchangeNoTeam); final != "" && final != chosen.side {
		return nil, SkipFinalGateContradiction, nil
	}

	net := netEdge(chosen.rawEdge, in.Costs)

	movement := in.YesMovement
	if chosen.side == models.SideNo {
		movement = in.NoMovement
	}

	reason, tier, fired := evaluateTrigger(chosen.rawEdge, net, movement)
	if !fired {
		return nil, SkipNoTrigger, nil
	}

	factors := models.SignalFactors{
		TriggerReason:     reason,
		RawEdge:           chosen.rawEdge,
		NetEdge:           net,
		MovementVelocity:  movement.Velocity,
		MovementBooks:     movement.BooksConfirming,
		MovementDirection: movementDirectionLabel(movement),
		GateNotes:         gateNotes,
	}

	signal := &models.SignalOpportunity{
		EventName:            in.Market.EventTitle,
		RecommendedOutcome:   chosen.recommendedOutcome,
		Side:                 chosen.side,
		PolymarketPrice:      in.Market.CachedYesPrice,
		BookmakerProbFair:    chosen.fairProb,
		EdgePercent:          chosen.rawEdge * 100,
		SignalStrength:       net * 100,
		SignalTier:           tier,
		MovementConfirmed:    movement.confirms(),
		MovementVelocity:     movement.Velocity,
		ConfidenceScore:      confidenceScore(net, movement.confirms()),
		Urgency:              models.UrgencyFromTimeToEvent(in.Market.EventStartTime.Sub(in.Now)),
		Status:                models.SignalStatusActive,
		ExpiresAt:            in.Market.EventStartTime,
		SignalFactors:        factors,
		PolymarketConditionID: in.Market.ConditionID,
	}

	return signal, SkipNone, nil
}

func movementDirectionLabel(m MovementInput) string {
	if !m.Triggered {
		return ""
	}
	if m.Shortening {
		return "shortening"
	}
	return "drifting"
}
