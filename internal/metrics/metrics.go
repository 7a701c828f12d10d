package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	UpstreamRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rank_tracker_upstream_requests_total",
			Help: "Stats provider requests by endpoint and outcome",
		},
		[]string{"endpoint", "outcome"}, // outcome: ok, not_found, timeout, unavailable, rejected
	)

	UpstreamDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "rank_tracker_upstream_request_duration_seconds",
			Help:    "Stats provider request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "rank_tracker_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	HistoryAppends = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "rank_tracker_history_appends_total",
			Help: "Rank history entries written",
		},
	)

	RankRefreshes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rank_tracker_refreshes_total",
			Help: "Rank refreshes by result",
		},
		[]string{"result"}, // changed, unchanged, no_data, failed
	)

	StatsCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "rank_tracker_stats_cache_hits_total",
			Help: "Stats proxy cache hits",
		},
	)

	StatsCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "rank_tracker_stats_cache_misses_total",
			Help: "Stats proxy cache misses",
		},
	)
)
