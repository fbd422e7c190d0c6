// Package movement implements the Movement Detector (§4.6): deciding
// whether sharp-book line movement over the last 30 minutes is large,
// recent, and confirmed enough to count as a real signal of new
// information rather than noise.
package movement

import (
	"context"
	"math"
	"sort"
	"time"

	"go.uber.org/zap"

	"mispricing-detector/internal/models"
	"mispricing-detector/internal/sportconfig"
	"mispricing-detector/pkg/utils"
)

const (
	snapshotWindow  = 30 * time.Minute
	recencyWindow   = 10 * time.Minute
	minAbsoluteMove = 0.02
	relativeMoveFrac = 0.12
	recencyShareMin = 0.70
)

// Direction describes the sign of a confirmed movement.
type Direction string

const (
	DirectionShortening Direction = "shortening" // probability increasing
	DirectionDrifting   Direction = "drifting"   // probability decreasing
	DirectionNone       Direction = ""
)

// Result is the Movement Detector's verdict for one (event, outcome) pair.
type Result struct {
	Triggered       bool
	Velocity        float64
	BooksConfirming int
	Direction       Direction
}

// SnapshotLoader loads sharp snapshots for one event/outcome key. The
// persistence adapter (C8) provides the concrete implementation.
type SnapshotLoader interface {
	LoadSince(ctx context.Context, eventKey, outcome string, since time.Time) ([]models.SharpSnapshot, error)
}

// Detector evaluates sharp-book line movement.
type Detector struct {
	loader SnapshotLoader
	logger *zap.Logger
}

// New builds a Movement Detector.
func New(loader SnapshotLoader, logger *zap.Logger) *Detector {
	return &Detector{loader: loader, logger: logger}
}

type bookMove struct {
	bookmaker string
	change    float64
}

// Evaluate implements §4.6 in full.
func (d *Detector) Evaluate(ctx context.Context, eventKey, outcome string, now time.Time) (Result, error) {
	window := utils.SnapshotWindow(now, snapshotWindow)
	snapshots, err := d.loader.LoadSince(ctx, eventKey, outcome, window.Start)
	if err != nil {
		return Result{}, err
	}
	if len(snapshots) < 2 {
		return Result{}, nil
	}

	sort.Slice(snapshots, func(i, j int) bool { return snapshots[i].CapturedAt.Before(snapshots[j].CapturedAt) })

	byBook := make(map[string][]models.SharpSnapshot)
	for _, s := range snapshots {
		if !sportconfig.SharpBooks[s.Bookmaker] {
			continue
		}
		byBook[s.Bookmaker] = append(byBook[s.Bookmaker], s)
	}

	var qualifying, moved []bookMove
	for book, snaps := range byBook {
		if len(snaps) < 2 {
			continue
		}
		oldest, newest := snaps[0], snaps[len(snaps)-1]
		change := newest.ImpliedProbability - oldest.ImpliedProbability
		moved = append(moved, bookMove{bookmaker: book, change: change})

		threshold := math.Max(minAbsoluteMove, relativeMoveFrac*oldest.ImpliedProbability)
		if math.Abs(change) < threshold {
			continue
		}

		if !passesRecencyRule(snaps, now, change) {
			continue
		}

		qualifying = append(qualifying, bookMove{bookmaker: book, change: change})
	}

	result := resolveTrigger(qualifying)
	for _, m := range moved {
		opposite := (result.Direction == DirectionShortening && m.change < 0) ||
			(result.Direction == DirectionDrifting && m.change > 0)
		if opposite && math.Abs(m.change) >= minAbsoluteMove {
			return Result{}, nil
		}
	}
	return result, nil
}

// passesRecencyRule implements §4.6 step 5: the move qualifies only if the
// most recent 10 minutes accounts for >= 70% of the total movement.
func passesRecencyRule(snaps []models.SharpSnapshot, now time.Time, totalChange float64) bool {
	if totalChange == 0 {
		return false
	}

	recentBoundary := now.Add(-recencyWindow)
	boundarySnapshot := snaps[0]
	for _, s := range snaps {
		if s.CapturedAt.After(recentBoundary) {
			break
		}
		boundarySnapshot = s
	}

	newest := snaps[len(snaps)-1]
	recentChange := newest.ImpliedProbability - boundarySnapshot.ImpliedProbability

	share := math.Abs(recentChange) / math.Abs(totalChange)
	return share >= recencyShareMin
}

// resolveTrigger implements §4.6 step 6-7 over the qualifying moves: >= 2
// books must share the same sign, with no qualifying move >= 0.02 in the
// opposite direction. Evaluate then also vetoes the result when any sharp
// book, qualifying or not, moved >= 0.02 in the opposite direction.
func resolveTrigger(moves []bookMove) Result {
	var positive, negative []bookMove
	for _, m := range moves {
		if m.change > 0 {
			positive = append(positive, m)
		} else {
			negative = append(negative, m)
		}
	}

	oppositeExceeds := func(opposite []bookMove) bool {
		for _, m := range opposite {
			if math.Abs(m.change) >= minAbsoluteMove {
				return true
			}
		}
		return false
	}

	switch {
	case len(positive) >= 2 && !oppositeExceeds(negative):
		return buildResult(positive, DirectionShortening)
	case len(negative) >= 2 && !oppositeExceeds(positive):
		return buildResult(negative, DirectionDrifting)
	default:
		return Result{}
	}
}

func buildResult(confirming []bookMove, direction Direction) Result {
	sum := 0.0
	for _, m := range confirming {
		sum += math.Abs(m.change)
	}
	return Result{
		Triggered:       true,
		Velocity:        sum / float64(len(confirming)),
		BooksConfirming: len(confirming),
		Direction:       direction,
	}
}
