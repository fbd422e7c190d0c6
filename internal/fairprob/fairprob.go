// Package fairprob implements the Fair Probability Engine (§4.5): turning
// a matched game's raw bookmaker odds into a single vig-free, sharp-book
// weighted consensus probability for one team.
package fairprob

import (
	"strings"

	"go.uber.org/zap"

	"mispricing-detector/internal/models"
	"mispricing-detector/internal/sportconfig"
	"mispricing-detector/pkg/utils"
)

const (
	outlierHigh = 0.92
	outlierLow  = 0.08
)

// Engine computes the weighted-consensus fair probability for one team in
// a matched game.
type Engine struct {
	logger *zap.Logger
}

// New builds a Fair Probability Engine.
func New(logger *zap.Logger) *Engine {
	return &Engine{logger: logger}
}

// Result is the outcome of a fair-probability computation for one team.
type Result struct {
	FairProbability float64
	BooksUsed       int
}

// ComputeH2H implements §4.5 steps 1-5 for an H2H market: drop draw/tie
// outcomes, locate the target team per book, compute per-book vig-free
// probability (rejecting outliers outside [0.08, 0.92]), weight sharp
// books 1.5x, and return the weighted mean. ok is false if no book
// contributed a usable probability for the team.
func (e *Engine) ComputeH2H(game *models.BookmakerGame, teamName string) (Result, bool) {
	var probs, weights []float64

	for _, bm := range game.Bookmakers {
		outcomes := h2hOutcomesExcludingDraws(bm)
		if len(outcomes) == 0 {
			continue
		}

		targetIdx := locateTeam(teamName, outcomes)
		if targetIdx == -1 {
			continue
		}

		raws := make([]float64, len(outcomes))
		for i, o := range outcomes {
			raws[i] = utils.ImpliedProbability(o.Price)
		}

		fair, ok := utils.VigFreeProbability(raws[targetIdx], raws)
		if !ok {
			continue
		}
		if fair > outlierHigh || fair < outlierLow {
			e.logger.Debug("fairprob: rejecting outlier probability",
				zap.String("bookmaker", bm.Key), zap.String("team", teamName), zap.Float64("fair", fair))
			continue
		}

		probs = append(probs, fair)
		weights = append(weights, sportconfig.SharpBookWeight(bm.Key))
	}

	mean, ok := utils.WeightedMean(probs, weights)
	if !ok {
		return Result{}, false
	}
	return Result{FairProbability: mean, BooksUsed: len(probs)}, true
}

// ComputeTotal implements §4.5's non-H2H rule: the outcome is the literal
// "Over"/"Under" identified from the exchange question text, otherwise the
// same vig-free/sharp-weighting pipeline applies.
func (e *Engine) ComputeTotal(game *models.BookmakerGame, side string) (Result, bool) {
	side = strings.ToLower(strings.TrimSpace(side))

	var probs, weights []float64
	for _, bm := range game.Bookmakers {
		for _, mkt := range bm.Markets {
			if mkt.Key != "totals" || len(mkt.Outcomes) == 0 {
				continue
			}
			targetIdx := -1
			for i, o := range mkt.Outcomes {
				if strings.ToLower(strings.TrimSpace(o.Name)) == side {
					targetIdx = i
					break
				}
			}
			if targetIdx == -1 {
				continue
			}

			raws := make([]float64, len(mkt.Outcomes))
			for i, o := range mkt.Outcomes {
				raws[i] = utils.ImpliedProbability(o.Price)
			}
			fair, ok := utils.VigFreeProbability(raws[targetIdx], raws)
			if !ok || fair > outlierHigh || fair < outlierLow {
				continue
			}
			probs = append(probs, fair)
			weights = append(weights, sportconfig.SharpBookWeight(bm.Key))
		}
	}

	mean, ok := utils.WeightedMean(probs, weights)
	if !ok {
		return Result{}, false
	}
	return Result{FairProbability: mean, BooksUsed: len(probs)}, true
}

// h2hOutcomesExcludingDraws collapses a three-way soccer H2H market to
// two-way by dropping outcomes that normalize to "draw" or equal "tie".
func h2hOutcomesExcludingDraws(bm models.BookmakerOdds) []models.BookmakerOutcome {
	for _, mkt := range bm.Markets {
		if mkt.Key != "h2h" {
			continue
		}
		out := make([]models.BookmakerOutcome, 0, len(mkt.Outcomes))
		for _, o := range mkt.Outcomes {
			norm := models.NormalizeName(o.Name)
			if norm == "draw" || norm == "tie" {
				continue
			}
			out = append(out, o)
		}
		return out
	}
	return nil
}

// locateTeam finds teamName within outcomes by exact normalized match,
// then by nickname substring (§4.5 step 2).
func locateTeam(teamName string, outcomes []models.BookmakerOutcome) int {
	normTeam := models.NormalizeName(teamName)
	if normTeam == "" {
		return -1
	}

	for i, o := range outcomes {
		if models.NormalizeName(o.Name) == normTeam {
			return i
		}
	}
	for i, o := range outcomes {
		normOutcome := models.NormalizeName(o.Name)
		if normOutcome == "" {
			continue
		}
		if strings.Contains(normOutcome, normTeam) || strings.Contains(normTeam, normOutcome) {
			return i
		}
	}
	return -1
}

// ValidatePair enforces §4.5's invariant check: when both YES and NO fair
// probabilities are known for an H2H match, |yes_fair + no_fair - 1| must
// be <= 0.05, otherwise the match is a PROBABILITY MISMATCH and must be
// discarded.
func ValidatePair(yesFair, noFair float64) error {
	return utils.ValidateFairProbabilityPair(yesFair, noFair)
}
