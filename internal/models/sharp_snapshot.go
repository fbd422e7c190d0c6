package models

import (
	"strings"
	"time"
)

// SharpSnapshot - одно наблюдение (событие, исход, sharp-букмекер).
// Неизменяема после записи; хранится минимум 30 минут, удаляется старше 24 часов.
type SharpSnapshot struct {
	ID                 string    `json:"id" db:"id"`
	EventKey           string    `json:"event_key" db:"event_key"` // normalize(event)::normalize(outcome)
	EventName          string    `json:"event_name" db:"event_name"`
	Outcome            string    `json:"outcome" db:"outcome"`
	Bookmaker          string    `json:"bookmaker" db:"bookmaker"` // канонический short-name sharp-букмекера
	ImpliedProbability float64   `json:"implied_probability" db:"implied_probability"`
	RawOdds            float64   `json:"raw_odds" db:"raw_odds"`
	CapturedAt         time.Time `json:"captured_at" db:"captured_at"`
}

// EventKey строит производный ключ события из (event_name, outcome).
// Оба компонента нормализуются одинаково с ключом, который использует matcher,
// иначе Movement Detector не найдёт снэпшоты только что сматченного события.
func EventKey(eventName, outcome string) string {
	return NormalizeName(eventName) + "::" + NormalizeName(outcome)
}

// NormalizeName приводит название команды/события к сравнимому виду:
// нижний регистр, схлопнутые пробелы, без пунктуации, без общих суффиксов клуба.
func NormalizeName(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	lastSpace := false
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastSpace = false
		default:
			if !lastSpace {
				b.WriteRune(' ')
				lastSpace = true
			}
		}
	}
	out := strings.TrimSpace(b.String())
	return stripAffixes(out)
}

// commonAffixes перечисляет клубные суффиксы/префиксы, которые не несут
// информации для сопоставления команд (§4.4 шаг "a").
var commonAffixes = []string{"fc", "sc", "afc", "cf", "bc", "the"}

func stripAffixes(s string) string {
	words := strings.Fields(s)
	filtered := words[:0]
	for _, w := range words {
		drop := false
		for _, a := range commonAffixes {
			if w == a {
				drop = true
				break
			}
		}
		if !drop {
			filtered = append(filtered, w)
		}
	}
	if len(filtered) == 0 {
		return strings.Join(words, " ")
	}
	return strings.Join(filtered, " ")
}
