package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"mispricing-detector/internal/exchangeapi"
	"mispricing-detector/internal/fairprob"
	"mispricing-detector/internal/models"
	"mispricing-detector/internal/movement"
	"mispricing-detector/internal/oddsapi"
	"mispricing-detector/internal/repository"
	"mispricing-detector/internal/signalbuilder"
	"mispricing-detector/internal/sportconfig"
	"mispricing-detector/pkg/utils"
)

// assumedStakeUSD is the reference stake size fed to the slippage-cost
// fallback (§4.7 "Net edge"); sizing an actual trade is out of scope (§1).
const assumedStakeUSD = 1000.0

// refreshActiveSignals implements §4.7's stateless price refresh: at the
// start of every pass, every currently-active signal's polymarket price is
// updated from the freshest available source (batch exchange price, then
// the cache), independent of whether that market still clears any edge
// threshold this pass.
func (p *Pipeline) refreshActiveSignals(ctx context.Context, quotes map[string]exchangeapi.Quote, now time.Time) {
	signals, err := p.deps.Signals.ListActive(ctx)
	if err != nil {
		p.logger.Warn("pipeline: failed to list active signals for stateless refresh", zap.Error(err))
		return
	}

	for _, s := range signals {
		market, err := p.deps.Markets.GetByConditionID(ctx, s.PolymarketConditionID)
		if err != nil {
			p.logger.Debug("pipeline: active signal references unknown market, skipping refresh",
				zap.String("signal_id", s.ID), zap.String("condition_id", s.PolymarketConditionID), zap.Error(err))
			continue
		}

		price := market.CachedYesPrice
		if q, ok := quotes[market.YesTokenID]; ok && q.HasAsk {
			price = q.Ask
		}
		if s.Side == models.SideNo {
			price = 1 - price
		}

		s.PolymarketPrice = price
		s.UpdatedAt = now
		if err := p.deps.Signals.Update(ctx, s); err != nil {
			p.logger.Warn("pipeline: failed to persist stateless signal refresh", zap.String("signal_id", s.ID), zap.Error(err))
		}
	}
}

// processMarket runs C4 -> C5 -> C6 -> C7 -> C8 for one watched market,
// incrementing counters and never letting a per-market failure propagate
// (§4.9, §5 "per-market failures never propagate").
func (p *Pipeline) processMarket(ctx context.Context, entry WatchedEntry, quotes map[string]exchangeapi.Quote, gamesBySport map[string][]*models.BookmakerGame, now time.Time, counters *Counters) {
	market := entry.Market
	log := p.logger.With(zap.String("condition_id", market.ConditionID), zap.String("event", market.EventTitle))

	if !market.EventStartTime.After(now) {
		if err := p.deps.Markets.MarkExpired(ctx, market.ConditionID); err != nil {
			log.Warn("pipeline: failed to mark expired market", zap.Error(err))
		}
		if p.deps.Watch != nil {
			if err := p.deps.Watch.MarkExpired(ctx, market.ConditionID); err != nil {
				log.Warn("pipeline: failed to mark expired watch state", zap.Error(err))
			}
		}
		counters.EventsExpired++
		return
	}

	if entry.Unknown {
		log.Debug("pipeline: market routed to unknown sport bucket, skipping sportsbook leg")
		return
	}

	if market.MarketType != models.MarketTypeH2H {
		log.Debug("pipeline: skipping non-h2h market type", zap.String("market_type", string(market.MarketType)))
		return
	}

	candidates := filterConsensus(gamesBySport[entry.SportCode])
	match, err := p.deps.Matcher.Match(ctx, market, candidates, now)
	if err != nil {
		log.Debug("pipeline: no match resolved for market", zap.Error(err))
		return
	}
	counters.EventsMatched++

	yesFair, yesOK := p.deps.FairProb.ComputeH2H(match.Game, match.YesTeamName)
	noFair, noOK := p.deps.FairProb.ComputeH2H(match.Game, match.NoTeamName)
	if !yesOK && !noOK {
		log.Debug("pipeline: fair probability engine found no usable books for either side")
		return
	}
	if yesOK && noOK {
		if err := fairprob.ValidatePair(yesFair.FairProbability, noFair.FairProbability); err != nil {
			log.Warn("pipeline: probability mismatch, discarding match", zap.Error(err))
			return
		}
	}

	liveYesPrice := market.CachedYesPrice
	quote, hasQuote := quotes[market.YesTokenID]
	if hasQuote && quote.HasAsk {
		liveYesPrice = quote.Ask
	}
	if err := p.deps.Markets.UpdatePrice(ctx, market.ConditionID, liveYesPrice, market.CachedVolume); err != nil {
		log.Warn("pipeline: failed to persist price refresh", zap.Error(err))
	}

	yesEventKey := models.EventKey(market.EventTitle, match.YesTeamName)
	noEventKey := models.EventKey(market.EventTitle, match.NoTeamName)

	yesMovement, err := p.deps.Movement.Evaluate(ctx, yesEventKey, match.YesTeamName, now)
	if err != nil {
		log.Warn("pipeline: movement detector failed for YES side", zap.Error(err))
	}
	noMovement, err := p.deps.Movement.Evaluate(ctx, noEventKey, match.NoTeamName, now)
	if err != nil {
		log.Warn("pipeline: movement detector failed for NO side", zap.Error(err))
	}
	if yesMovement.Triggered || noMovement.Triggered {
		counters.MovementConfirmed++
	}

	p.writeSnapshots(ctx, market, match, now)

	lastRefresh, matched := p.loadLastRefresh(ctx, market, now)

	builderMarket := *market
	builderMarket.CachedYesPrice = liveYesPrice

	in := signalbuilder.Input{
		Market:          &builderMarket,
		Match:           match,
		YesFair:         yesFair.FairProbability,
		NoFair:          noFair.FairProbability,
		ExchangeYesTeam: match.YesTeamName,
		ExchangeNoTeam:  match.NoTeamName,
		YesMovement:     toMovementInput(yesMovement),
		NoMovement:      toMovementInput(noMovement),
		LastPolyRefresh: lastRefresh,
		Costs: signalbuilder.CostInputs{
			MeasuredSpreadPct: quote.SpreadPct / 100,
			HasMeasuredSpread: hasQuote,
			Volume:            market.CachedVolume,
			Stake:             assumedStakeUSD,
		},
		Now: now,
	}

	candidate, skip, err := p.deps.Builder.Build(in)
	if err != nil {
		log.Warn("pipeline: signal builder failed", zap.Error(err))
		return
	}

	p.updateWatchState(ctx, market, liveYesPrice, matched, skip == signalbuilder.SkipNone, now)

	if skip != signalbuilder.SkipNone {
		skipsTotal.WithLabelValues(string(skip)).Inc()
		return
	}

	counters.EdgesFound++
	signalsTotal.WithLabelValues(string(candidate.SignalTier)).Inc()

	result, err := signalbuilder.Persist(ctx, p.deps.Signals, candidate)
	if err != nil {
		log.Warn("pipeline: failed to persist signal", zap.Error(err))
		return
	}
	if result.Notify && p.deps.Notifier != nil {
		counters.AlertsSent++
		p.deps.Notifier.Notify(ctx, result.Signal)
	}
}

// filterConsensus keeps only games with >= 2 independent bookmakers
// (§4.3: only these participate in consensus).
func filterConsensus(games []*models.BookmakerGame) []*models.BookmakerGame {
	out := make([]*models.BookmakerGame, 0, len(games))
	for _, g := range games {
		if oddsapi.HasConsensus(g) {
			out = append(out, g)
		}
	}
	return out
}

// writeSnapshots persists this pass's sharp-book observations for later
// movement detection (§3: SharpSnapshot is a sharp-book-only time series).
// Per §5, snapshots written in pass N are only consumed starting pass
// N+1: this call happens after Evaluate has already read the prior
// window, so it cannot leak into this pass.
func (p *Pipeline) writeSnapshots(ctx context.Context, market *models.WatchedMarket, match *models.MatchResult, now time.Time) {
	for _, bm := range match.Game.Bookmakers {
		if !sportconfig.SharpBooks[bm.Key] {
			continue
		}
		for _, name := range []string{match.YesTeamName, match.NoTeamName} {
			rawOdds, ok := sharpBookOdds(bm, name)
			if !ok {
				continue
			}
			snap := models.SharpSnapshot{
				ID:                 uuid.NewString(),
				EventKey:           models.EventKey(market.EventTitle, name),
				EventName:          market.EventTitle,
				Outcome:            name,
				Bookmaker:          bm.Key,
				ImpliedProbability: utils.ImpliedProbability(rawOdds),
				RawOdds:            rawOdds,
				CapturedAt:         now,
			}
			if err := p.deps.Snapshots.Insert(ctx, snap); err != nil {
				p.logger.Warn("pipeline: failed to persist sharp snapshot",
					zap.String("event_key", snap.EventKey), zap.String("bookmaker", bm.Key), zap.Error(err))
			}
		}
	}
}

// sharpBookOdds looks up one team's raw decimal odds within a single
// bookmaker's h2h market, for snapshotting.
func sharpBookOdds(bm models.BookmakerOdds, teamName string) (float64, bool) {
	for _, mkt := range bm.Markets {
		if mkt.Key != "h2h" {
			continue
		}
		normTeam := models.NormalizeName(teamName)
		for _, o := range mkt.Outcomes {
			if models.NormalizeName(o.Name) == normTeam {
				return o.Price, true
			}
		}
	}
	return 0, false
}

// loadLastRefresh returns the last known poly refresh time and whether
// this market was previously matched, falling back to the watched
// market's own last cache update when no escalation row exists yet.
func (p *Pipeline) loadLastRefresh(ctx context.Context, market *models.WatchedMarket, now time.Time) (time.Time, bool) {
	if p.deps.Watch == nil {
		return market.UpdatedAt, false
	}
	state, err := p.deps.Watch.GetByConditionID(ctx, market.ConditionID)
	if errors.Is(err, repository.ErrEventWatchStateNotFound) {
		return market.UpdatedAt, false
	}
	if err != nil {
		p.logger.Warn("pipeline: failed to load event watch state", zap.Error(err))
		return market.UpdatedAt, false
	}
	return state.LastPolyRefresh, state.PolymarketMatched
}

// updateWatchState escalates or maintains the optional long-lived
// tracking row for a market (§3 EventWatchState).
func (p *Pipeline) updateWatchState(ctx context.Context, market *models.WatchedMarket, currentProbability float64, matched, alerted bool, now time.Time) {
	if p.deps.Watch == nil {
		return
	}
	state := models.WatchStateMonitored
	if alerted {
		state = models.WatchStateAlerted
	}
	err := p.deps.Watch.Upsert(ctx, &models.EventWatchState{
		PolymarketConditionID: market.ConditionID,
		WatchState:            state,
		LastPolyRefresh:       now,
		CurrentProbability:    currentProbability,
		PolymarketMatched:     matched,
	})
	if err != nil {
		p.logger.Warn("pipeline: failed to upsert event watch state", zap.String("condition_id", market.ConditionID), zap.Error(err))
	}
}

// toMovementInput adapts a movement.Result to signalbuilder.MovementInput.
func toMovementInput(r movement.Result) signalbuilder.MovementInput {
	return signalbuilder.MovementInput{
		Triggered:       r.Triggered,
		BooksConfirming: r.BooksConfirming,
		Velocity:        r.Velocity,
		Shortening:      r.Direction == movement.DirectionShortening,
	}
}
