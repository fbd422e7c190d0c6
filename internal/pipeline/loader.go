package pipeline

import (
	"context"
	"sort"

	"mispricing-detector/internal/models"
	"mispricing-detector/internal/sportconfig"
)

// minAPISourcedVolume is the volume floor for set (a) of the watch union
// (§4.1); set (b), firecrawl-sourced, carries no volume filter.
const minAPISourcedVolume = 5000.0

// WatchedEntry is one market in the ordered watch set produced by the
// Market Loader, carrying the sport code actually resolved for this pass
// (possibly recovered via detection when the cached sport_code was
// unknown) alongside the flag that routes it around the sportsbook leg.
type WatchedEntry struct {
	Market    *models.WatchedMarket
	SportCode string
	Unknown   bool
}

// LoadWatchSet implements §4.1: union two disjoint sets (deduped by
// condition_id, first-seen wins), then resolve sport for any market whose
// cached sport_code isn't one of supported_sports, finally sorting the
// combined set by event_start_time ascending.
func LoadWatchSet(ctx context.Context, repo MarketRepo, maxAPISourced, maxFirecrawlSourced int) ([]WatchedEntry, error) {
	apiSet, err := repo.ListWatchableAPISourced(ctx, minAPISourcedVolume, maxAPISourced)
	if err != nil {
		return nil, err
	}
	firecrawlSet, err := repo.ListWatchableFirecrawlSourced(ctx, maxFirecrawlSourced)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(apiSet)+len(firecrawlSet))
	entries := make([]WatchedEntry, 0, len(apiSet)+len(firecrawlSet))

	for _, m := range append(apiSet, firecrawlSet...) {
		if seen[m.ConditionID] {
			continue
		}
		seen[m.ConditionID] = true
		entries = append(entries, resolveSport(m))
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Market.EventStartTime.Before(entries[j].Market.EventStartTime)
	})
	return entries, nil
}

// resolveSport implements §4.1's fallback for markets with a null/unknown
// sport_code: attempt detection from event_title ++ question before
// routing the market into the Unknown bucket (§4.10).
func resolveSport(m *models.WatchedMarket) WatchedEntry {
	if sportconfig.IsSupported(m.SportCode) {
		return WatchedEntry{Market: m, SportCode: m.SportCode}
	}
	if code, ok := sportconfig.DetectSport(m.EventTitle + " " + m.Question); ok {
		return WatchedEntry{Market: m, SportCode: code}
	}
	return WatchedEntry{Market: m, Unknown: true}
}
