// Package metrics provides Prometheus exporters for application metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for the habit reward engine.
var (
	// Counters.
	CompletionClaimsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "completion_claims_total",
			Help: "Total number of completion claims",
		},
		[]string{"status"},
	)

	CompletionsSettledTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "completions_settled_total",
			Help: "Total number of completion attempts settled",
		},
		[]string{"validated"},
	)

	EvaluatorFallbacksTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "evaluator_fallbacks_total",
			Help: "Total number of scoring calls that fell back to the deterministic heuristic",
		},
	)

	BadgesAwardedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "badges_awarded_total",
			Help: "Total number of badges awarded",
		},
		[]string{"badge"},
	)

	XPGrantedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "xp_granted_total",
			Help: "Total XP granted across all users",
		},
	)

	CoinsGrantedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "coins_granted_total",
			Help: "Total coins granted across all users",
		},
	)

	PurchasesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shop_purchases_total",
			Help: "Total shop purchase attempts",
		},
		[]string{"status"},
	)

	LevelUpsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "level_ups_total",
			Help: "Total number of level-up events",
		},
	)

	StreaksBrokenTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "streaks_broken_total",
			Help: "Total number of streaks reset by a day gap",
		},
	)

	// Histograms.
	ConfidenceScore = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "attempt_confidence_score",
			Help:    "Distribution of confidence scores on settled attempts",
			Buckets: prometheus.LinearBuckets(0, 10, 11), // 0 to 100
		},
	)

	EvaluatorRequestSeconds = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "evaluator_request_seconds",
			Help:    "Latency of external evaluator calls",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 10), // 50ms to ~25s
		},
	)
)

// RecordSettlement records a settled attempt with its confidence score.
func RecordSettlement(validated bool, confidence int) {
	label := "false"
	if validated {
		label = "true"
	}
	CompletionsSettledTotal.WithLabelValues(label).Inc()
	ConfidenceScore.Observe(float64(confidence))
}

// RecordBadgeAwarded records a badge award event.
func RecordBadgeAwarded(badgeID string) {
	BadgesAwardedTotal.WithLabelValues(badgeID).Inc()
}

// RecordReward records granted XP and coins.
func RecordReward(xp, coins int, leveledUp bool) {
	XPGrantedTotal.Add(float64(xp))
	CoinsGrantedTotal.Add(float64(coins))
	if leveledUp {
		LevelUpsTotal.Inc()
	}
}
