package utils

import "time"

// time.go - утилиты для работы со временем
//
// Вспомогательные функции для временных окон детектора: окно снэпшотов
// sharp-букмекеров (30 минут), окно недавности (10 минут), ретеншн (24 часа)
// и допуск на рассинхронизацию дат события между биржей и букмекером.

// TimeRange - полуоткрытый интервал [Start, End).
type TimeRange struct {
	Start time.Time
	End   time.Time
}

// Contains сообщает, попадает ли t в диапазон.
func (r TimeRange) Contains(t time.Time) bool {
	return !t.Before(r.Start) && t.Before(r.End)
}

// Duration возвращает длину диапазона.
func (r TimeRange) Duration() time.Duration {
	return r.End.Sub(r.Start)
}

// SnapshotWindow возвращает диапазон [now-window, now) для выборки
// sharp-снэпшотов конкретного (event_key, outcome) в Movement Detector (§4.6).
func SnapshotWindow(now time.Time, window time.Duration) TimeRange {
	return TimeRange{Start: now.Add(-window), End: now}
}

// RecencyWindow возвращает диапазон последних recency минут внутри
// общего окна снэпшотов, используемый правилом недавности (§4.6 шаг 5).
func RecencyWindow(now time.Time, recency time.Duration) TimeRange {
	return TimeRange{Start: now.Add(-recency), End: now}
}

// IsWithinCommenceWindow проверяет, что время начала игры букмекера попадает
// в [now-30m, now+24h] - второй date/time guard перед каскадом матчера (§4.4).
func IsWithinCommenceWindow(commenceTime, now time.Time) bool {
	lower := now.Add(-30 * time.Minute)
	upper := now.Add(24 * time.Hour)
	return !commenceTime.Before(lower) && !commenceTime.After(upper)
}

// EventDateDelta returns the absolute duration between the exchange event's
// start time and the bookmaker game's commence time, used by the first
// date/time guard (> 24h apart => reject, §4.4).
func EventDateDelta(exchangeEventTime, bookmakerCommenceTime time.Time) time.Duration {
	d := exchangeEventTime.Sub(bookmakerCommenceTime)
	if d < 0 {
		return -d
	}
	return d
}

// IsStale reports whether a price's age exceeds the given staleness bound,
// as used by the Signal Builder's staleness rail (§4.7 rail #4).
func IsStale(lastRefresh, now time.Time, bound time.Duration) bool {
	if lastRefresh.IsZero() {
		return true
	}
	return now.Sub(lastRefresh) > bound
}
