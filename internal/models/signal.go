package models

import "time"

// Side - сторона бинарного контракта, которую рекомендует сигнал.
type Side string

const (
	SideYes Side = "YES"
	SideNo  Side = "NO"
)

// Opposite возвращает противоположную сторону.
func (s Side) Opposite() Side {
	if s == SideYes {
		return SideNo
	}
	return SideYes
}

// SignalTier - класс качества сигнала.
type SignalTier string

const (
	TierStatic SignalTier = "static"
	TierStrong SignalTier = "strong"
	TierElite  SignalTier = "elite"
)

// tierRank используется для сравнения/повышения тира (static < strong < elite).
var tierRank = map[SignalTier]int{
	TierStatic: 0,
	TierStrong: 1,
	TierElite:  2,
}

// Rank возвращает порядковый номер тира для сравнений и апгрейдов.
func (t SignalTier) Rank() int {
	return tierRank[t]
}

// TierFromRank переводит порядковый номер (с насыщением) обратно в тир.
func TierFromRank(r int) SignalTier {
	if r <= 0 {
		return TierStatic
	}
	if r == 1 {
		return TierStrong
	}
	return TierElite
}

// SignalStatus - состояние жизненного цикла сигнала.
type SignalStatus string

const (
	SignalStatusActive   SignalStatus = "active"
	SignalStatusExecuted SignalStatus = "executed"
	SignalStatusExpired  SignalStatus = "expired"
	SignalStatusDismissed SignalStatus = "dismissed"
)

// TriggerReason объясняет, что именно вызвало сигнал.
type TriggerReason string

const (
	TriggerEdge     TriggerReason = "edge"
	TriggerMovement TriggerReason = "movement"
	TriggerBoth     TriggerReason = "both"
)

// Urgency - срочность по времени до начала события.
type Urgency string

const (
	UrgencyLow      Urgency = "low"
	UrgencyNormal   Urgency = "normal"
	UrgencyHigh     Urgency = "high"
	UrgencyCritical Urgency = "critical"
)

// UrgencyFromTimeToEvent классифицирует срочность по времени до начала события (§4.7).
func UrgencyFromTimeToEvent(d time.Duration) Urgency {
	switch {
	case d < time.Hour:
		return UrgencyCritical
	case d < 4*time.Hour:
		return UrgencyHigh
	default:
		return UrgencyNormal
	}
}

// SignalFactors - структурированная диагностика, объясняющая, почему сигнал сработал.
type SignalFactors struct {
	TriggerReason      TriggerReason          `json:"trigger_reason"`
	RawEdge            float64                `json:"raw_edge"`
	NetEdge            float64                `json:"net_edge"`
	MovementVelocity   float64                `json:"movement_velocity,omitempty"`
	MovementBooks      int                    `json:"movement_books,omitempty"`
	MovementDirection  string                 `json:"movement_direction,omitempty"`
	GateNotes          []string               `json:"gate_notes,omitempty"` // например "MAPPING_ALLOWED_DESPITE_SWAP"
	Extra              map[string]interface{} `json:"extra,omitempty"`
}

// SignalOpportunity - итоговый результат детектора: ровно один активный сигнал
// на (event_name, recommended_outcome), см. инвариант в §3.
type SignalOpportunity struct {
	ID                   string        `json:"id" db:"id"`
	EventName            string        `json:"event_name" db:"event_name"`
	RecommendedOutcome   string        `json:"recommended_outcome" db:"recommended_outcome"`
	Side                 Side          `json:"side" db:"side"`
	PolymarketPrice      float64       `json:"polymarket_price" db:"polymarket_price"`
	BookmakerProbFair    float64       `json:"bookmaker_prob_fair" db:"bookmaker_prob_fair"`
	EdgePercent          float64       `json:"edge_percent" db:"edge_percent"`
	SignalStrength       float64       `json:"signal_strength" db:"signal_strength"` // net edge × 100
	SignalTier           SignalTier    `json:"signal_tier" db:"signal_tier"`
	MovementConfirmed    bool          `json:"movement_confirmed" db:"movement_confirmed"`
	MovementVelocity     float64       `json:"movement_velocity" db:"movement_velocity"`
	ConfidenceScore      float64       `json:"confidence_score" db:"confidence_score"` // [0,95]
	Urgency              Urgency       `json:"urgency" db:"urgency"`
	Status               SignalStatus  `json:"status" db:"status"`
	ExpiresAt            time.Time     `json:"expires_at" db:"expires_at"`
	SignalFactors        SignalFactors `json:"signal_factors" db:"signal_factors"`
	PolymarketConditionID string       `json:"polymarket_condition_id" db:"polymarket_condition_id"`
	CreatedAt            time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt            time.Time     `json:"updated_at" db:"updated_at"`
}

// IsTerminal сообщает, можно ли ещё трогать этот сигнал из детектора.
// dismissed терминален для пары (event, outcome) - детектор не должен его пересоздавать (§3).
func (s *SignalOpportunity) IsTerminal() bool {
	return s.Status == SignalStatusExecuted || s.Status == SignalStatusDismissed
}

// ClampConfidence ограничивает уверенность диапазоном [0,95], как того требует модель данных.
func ClampConfidence(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 95 {
		return 95
	}
	return v
}
