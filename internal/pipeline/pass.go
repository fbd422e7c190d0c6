package pipeline

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"mispricing-detector/internal/config"
	"mispricing-detector/internal/exchangeapi"
	"mispricing-detector/internal/models"
	"mispricing-detector/internal/sportconfig"
)

// Deps bundles every collaborator the pipeline orchestrates. Notifier and
// Quota may be nil: Notifier when no downstream fan-out is wired, Quota
// when the LLM resolver tier is disabled.
type Deps struct {
	Markets   MarketRepo
	Snapshots SnapshotRepo
	Watch     EventWatchRepo
	Signals   SignalStore
	Quoter    ExchangeQuoter
	Odds      OddsFetcher
	Matcher   MarketMatcher
	FairProb  FairProbEngine
	Movement  MovementEvaluator
	Builder   SignalBuilder
	Quota     QuotaResetter
	Notifier  Notifier
}

// Pipeline is the Scheduler Entry Point (C9): it owns one full pass,
// start to finish.
type Pipeline struct {
	cfg    config.PipelineConfig
	deps   Deps
	logger *zap.Logger
}

// New builds a Pipeline.
func New(cfg config.PipelineConfig, deps Deps, logger *zap.Logger) *Pipeline {
	return &Pipeline{cfg: cfg, deps: deps, logger: logger}
}

// RunPass executes one full detection pass and returns its counters.
// Per-market failures are caught and logged; they never abort the pass
// or propagate as the returned error. The returned error is non-nil only
// for pass-level setup failures (the Market Loader's own queries).
func (p *Pipeline) RunPass(ctx context.Context) (Counters, error) {
	start := time.Now()
	if p.deps.Quota != nil {
		p.deps.Quota.ResetPassQuota()
	}

	passCtx, cancel := context.WithTimeout(ctx, p.cfg.PassDeadline)
	defer cancel()

	counters := Counters{}

	entries, err := LoadWatchSet(passCtx, p.deps.Markets, p.cfg.MaxWatchedMarkets, p.cfg.MaxCandidateGames)
	if err != nil {
		recordPassResult(counters, "error")
		return counters, err
	}
	counters.EventsPolled = len(entries)

	quotes, gamesBySport := p.fetchBatch(passCtx, entries)

	now := time.Now()
	p.refreshActiveSignals(passCtx, quotes, now)

	for _, entry := range entries {
		if passCtx.Err() != nil {
			p.logger.Warn("pipeline: pass deadline reached, stopping early", zap.Int("processed", counters.EventsMatched+counters.EventsExpired))
			break
		}
		p.processMarket(passCtx, entry, quotes, gamesBySport, now, &counters)
	}

	counters.DurationMs = time.Since(start).Milliseconds()
	outcome := "ok"
	if passCtx.Err() != nil {
		outcome = "deadline_exceeded"
	}
	recordPassResult(counters, outcome)
	return counters, nil
}

// fetchBatch runs C2 (exchange price batch) and C3 (sportsbook odds, one
// call per sport) concurrently - the only parallel point in a pass (§5).
func (p *Pipeline) fetchBatch(ctx context.Context, entries []WatchedEntry) (map[string]exchangeapi.Quote, map[string][]*models.BookmakerGame) {
	tokenIDs := make([]string, 0, len(entries))
	sports := make(map[string]bool)
	for _, e := range entries {
		if e.Market.HasTradeableToken() {
			tokenIDs = append(tokenIDs, e.Market.YesTokenID)
		}
		if !e.Unknown {
			sports[e.SportCode] = true
		}
	}

	var quotes map[string]exchangeapi.Quote
	gamesBySport := make(map[string][]*models.BookmakerGame, len(sports))
	var gamesMu sync.Mutex

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		quotes = p.deps.Quoter.FetchQuotes(ctx, tokenIDs)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		var sportWg sync.WaitGroup
		for code := range sports {
			sportWg.Add(1)
			go func(sportCode string) {
				defer sportWg.Done()
				key, ok := sportconfig.OddsAPISportKey(sportCode)
				if !ok {
					return
				}
				games, err := p.deps.Odds.FetchSport(ctx, key)
				if err != nil {
					p.logger.Warn("pipeline: odds fetch failed for sport", zap.String("sport", sportCode), zap.Error(err))
					return
				}
				gamesMu.Lock()
				gamesBySport[sportCode] = games
				gamesMu.Unlock()
			}(code)
		}
		sportWg.Wait()
	}()
	wg.Wait()

	return quotes, gamesBySport
}
