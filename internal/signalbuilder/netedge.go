package signalbuilder

import "mispricing-detector/pkg/utils"

// CostInputs carries the per-market cost inputs needed to turn a raw edge
// into a net edge (§4.7 "Net edge").
type CostInputs struct {
	MeasuredSpreadPct float64 // fraction, e.g. 0.01 for 1%; used when HasMeasuredSpread
	HasMeasuredSpread bool
	Volume            float64 // current market volume, used by the spread/slippage fallbacks
	Stake             float64 // assumed stake size for slippage estimation
}

// netEdge subtracts platform fee, spread cost, and slippage cost from
// rawEdge, per §4.7.
func netEdge(rawEdge float64, costs CostInputs) float64 {
	spreadCost := costs.MeasuredSpreadPct
	if !costs.HasMeasuredSpread {
		spreadCost = utils.SpreadCostFallback(costs.Volume)
	}
	slippageCost := utils.SlippageCost(costs.Stake, costs.Volume)
	return utils.NetEdge(rawEdge, spreadCost, slippageCost)
}
