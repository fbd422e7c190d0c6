package models

import "time"

// WatchedMarket представляет одно биржевое событие (binary market) под наблюдением.
// condition_id - стабильный идентификатор бинарного контракта на бирже прогнозов.
type WatchedMarket struct {
	ConditionID       string    `json:"condition_id" db:"condition_id"`
	EventTitle        string    `json:"event_title" db:"event_title"`     // обычно "A vs B"
	Question          string    `json:"question" db:"question"`
	SportCode         string    `json:"sport_code" db:"sport_code"`
	MarketType        MarketType `json:"market_type" db:"market_type"`
	YesTokenID        string    `json:"yes_token_id,omitempty" db:"yes_token_id"` // пусто = нельзя торговать
	CachedYesPrice    float64   `json:"cached_yes_price" db:"cached_yes_price"`
	CachedVolume      float64   `json:"cached_volume" db:"cached_volume"`
	EventStartTime    time.Time `json:"event_start_time" db:"event_start_time"`
	MonitoringStatus  MonitoringStatus `json:"monitoring_status" db:"monitoring_status"`
	Status            string    `json:"status" db:"status"` // active / inactive, источник сканера
	Source             MarketSource `json:"source" db:"source"`
	CreatedAt          time.Time `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time `json:"updated_at" db:"updated_at"`
}

// MarketType перечисляет типы биржевых бинарных рынков, которые умеет обрабатывать детектор.
type MarketType string

const (
	MarketTypeH2H        MarketType = "h2h"
	MarketTypeTotal      MarketType = "total"
	MarketTypeSpread     MarketType = "spread"
	MarketTypePlayerProp MarketType = "player_prop"
	MarketTypeFutures    MarketType = "futures"
)

// MonitoringStatus - стадия жизненного цикла наблюдения за рынком.
type MonitoringStatus string

const (
	MonitoringIdle      MonitoringStatus = "idle"
	MonitoringWatching  MonitoringStatus = "watching"
	MonitoringTriggered MonitoringStatus = "triggered"
	MonitoringExpired   MonitoringStatus = "expired"
)

// MarketSource - откуда рынок попал в кэш.
type MarketSource string

const (
	MarketSourceAPI       MarketSource = "api"
	MarketSourceFirecrawl MarketSource = "firecrawl"
)

// HasTradeableToken сообщает, можно ли вообще получить цену для этого рынка.
// Рынок без yes_token_id не торгуется (см. NO_TOKEN_ID_SKIP).
func (m *WatchedMarket) HasTradeableToken() bool {
	return m.YesTokenID != ""
}

// IsEligibleForWatch проверяет базовые инварианты набора наблюдения (§4.1).
func (m *WatchedMarket) IsEligibleForWatch(now time.Time) bool {
	if m.Status != "active" {
		return false
	}
	if m.MonitoringStatus != MonitoringWatching && m.MonitoringStatus != MonitoringTriggered {
		return false
	}
	if !m.EventStartTime.After(now) {
		return false
	}
	return true
}
