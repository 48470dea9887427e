package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the eligibility module.
type Metrics struct {
	// Evaluation outcomes by status and jurisdiction
	EvaluationOutcome *prometheus.CounterVec

	// Overall evaluation latency
	EvaluateLatency prometheus.Histogram

	// Rule cache hits and misses by jurisdiction
	CacheHits   *prometheus.CounterVec
	CacheMisses *prometheus.CounterVec

	// Per-jurisdiction refresh failures
	RefreshFailures *prometheus.CounterVec
}

// New creates a new Metrics instance with all eligibility module metrics registered.
func New() *Metrics {
	return &Metrics{
		EvaluationOutcome: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "benefind_evaluation_outcomes_total",
			Help: "Total eligibility evaluation outcomes by status and jurisdiction",
		}, []string{"status", "jurisdiction"}),

		EvaluateLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "benefind_evaluate_duration_seconds",
			Help:    "Duration of full eligibility evaluation including rule loading",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),

		CacheHits: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "benefind_rule_cache_hits_total",
			Help: "Total rule cache hits by jurisdiction",
		}, []string{"jurisdiction"}),

		CacheMisses: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "benefind_rule_cache_misses_total",
			Help: "Total rule cache misses by jurisdiction",
		}, []string{"jurisdiction"}),

		RefreshFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "benefind_rule_refresh_failures_total",
			Help: "Total per-jurisdiction rule refresh failures",
		}, []string{"jurisdiction"}),
	}
}

// IncrementOutcome records an evaluation outcome.
func (m *Metrics) IncrementOutcome(status, jurisdiction string) {
	if m != nil {
		m.EvaluationOutcome.WithLabelValues(status, jurisdiction).Inc()
	}
}

// ObserveEvaluateLatency records the total evaluation duration.
func (m *Metrics) ObserveEvaluateLatency(d time.Duration) {
	if m != nil {
		m.EvaluateLatency.Observe(d.Seconds())
	}
}

// IncrementCacheHit records a rule cache hit.
func (m *Metrics) IncrementCacheHit(jurisdiction string) {
	if m != nil {
		m.CacheHits.WithLabelValues(jurisdiction).Inc()
	}
}

// IncrementCacheMiss records a rule cache miss.
func (m *Metrics) IncrementCacheMiss(jurisdiction string) {
	if m != nil {
		m.CacheMisses.WithLabelValues(jurisdiction).Inc()
	}
}

// IncrementRefreshFailure records one jurisdiction failing during a bulk refresh.
func (m *Metrics) IncrementRefreshFailure(jurisdiction string) {
	if m != nil {
		m.RefreshFailures.WithLabelValues(jurisdiction).Inc()
	}
}
