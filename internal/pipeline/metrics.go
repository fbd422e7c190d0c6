package pipeline

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ============ Pass-level metrics ============

var passDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: "mispricing_detector",
		Subsystem: "pipeline",
		Name:      "pass_duration_ms",
		Help:      "Wall-clock duration of one full detection pass in milliseconds",
		Buckets:   []float64{100, 250, 500, 1000, 2500, 5000, 10000, 20000, 25000},
	},
)

var passesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "mispricing_detector",
		Subsystem: "pipeline",
		Name:      "passes_total",
		Help:      "Total number of completed passes by outcome",
	},
	[]string{"outcome"}, // ok, deadline_exceeded, error
)

var marketsPolled = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: "mispricing_detector",
		Subsystem: "pipeline",
		Name:      "markets_polled",
		Help:      "Number of watched markets loaded in the most recent pass",
	},
)

var signalsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "mispricing_detector",
		Subsystem: "pipeline",
		Name:      "signals_total",
		Help:      "Signals produced, by tier",
	},
	[]string{"tier"}, // static, strong, elite
)

var skipsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "mispricing_detector",
		Subsystem: "pipeline",
		Name:      "skips_total",
		Help:      "Markets skipped during signal building, by reason",
	},
	[]string{"reason"},
)

var movementTriggeredTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: "mispricing_detector",
		Subsystem: "pipeline",
		Name:      "movement_triggered_total",
		Help:      "Number of matched markets where the movement detector triggered on the YES or NO side",
	},
)

var alertsSentTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: "mispricing_detector",
		Subsystem: "pipeline",
		Name:      "alerts_sent_total",
		Help:      "Number of newly-inserted strong/elite signals forwarded to the notifier",
	},
)

// recordPassResult updates the pass-level gauges/counters from a
// completed pass's counters.
func recordPassResult(c Counters, outcome string) {
	passDuration.Observe(float64(c.DurationMs))
	passesTotal.WithLabelValues(outcome).Inc()
	marketsPolled.Set(float64(c.EventsPolled))
	movementTriggeredTotal.Add(float64(c.MovementConfirmed))
	alertsSentTotal.Add(float64(c.AlertsSent))
}
