package utils

import "math"

// VigFreeProbability converts one bookmaker's decimal odds for the target
// outcome into a vig-free probability, given the implied (1/odds) shares of
// every outcome in the same market: fair = raw_target / sum(raw_k).
// Returns 0 and false if the market has no positive implied probabilities.
func VigFreeProbability(rawTarget float64, rawOutcomes []float64) (float64, bool) {
	var sum float64
	for _, r := range rawOutcomes {
		sum += r
	}
	if sum <= 0 {
		return 0, false
	}
	return rawTarget / sum, true
}

// ImpliedProbability converts decimal odds to the raw (vig-laden) implied
// probability: 1 / odds.
func ImpliedProbability(decimalOdds float64) float64 {
	if decimalOdds <= 0 {
		return 0
	}
	return 1 / decimalOdds
}

// WeightedMean computes a weighted average of values, skipping non-positive
// weights. Returns 0 and false if no weight contributed.
func WeightedMean(values, weights []float64) (float64, bool) {
	if len(values) != len(weights) {
		return 0, false
	}
	var sumWeighted, sumWeights float64
	for i, v := range values {
		w := weights[i]
		if w <= 0 {
			continue
		}
		sumWeighted += v * w
		sumWeights += w
	}
	if sumWeights <= 0 {
		return 0, false
	}
	return sumWeighted / sumWeights, true
}

// CalculateSpread returns the percentage spread between two prices:
// (priceHigh - priceLow) / priceLow * 100.
func CalculateSpread(priceHigh, priceLow float64) float64 {
	if priceLow <= 0 {
		return 0
	}
	return (priceHigh - priceLow) / priceLow * 100
}

// SpreadCostFallback estimates spread cost as a fraction of notional when no
// measured spread is available, grading from 0.5% at >=$500k volume to 3%
// below $10k volume (§4.7 "net edge").
func SpreadCostFallback(volume float64) float64 {
	switch {
	case volume >= 500_000:
		return 0.005
	case volume <= 10_000:
		return 0.03
	default:
		// линейная интерполяция между крайними точками диапазона
		frac := (volume - 10_000) / (500_000 - 10_000)
		return 0.03 - frac*(0.03-0.005)
	}
}

// SlippageCost estimates slippage as a function of stake/volume, ranging
// from 0.2% to 3% (§4.7 "net edge").
func SlippageCost(stake, volume float64) float64 {
	if volume <= 0 {
		return 0.03
	}
	ratio := stake / volume
	cost := 0.002 + ratio*0.028
	return math.Min(0.03, math.Max(0.002, cost))
}

// NetEdge subtracts platform fee (1% of a positive raw edge), spread cost,
// and slippage cost from a raw edge value.
func NetEdge(rawEdge, spreadCost, slippageCost float64) float64 {
	fee := 0.0
	if rawEdge > 0 {
		fee = rawEdge * 0.01
	}
	return rawEdge - fee - spreadCost - slippageCost
}

// RoundTo rounds v to the given number of decimal places.
func RoundTo(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}
