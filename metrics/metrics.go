package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	Computations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "navarch_computations_total",
			Help: "Total number of hydrostatic computations by kind",
		},
		[]string{"kind"},
	)

	ComputationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "navarch_computation_duration_seconds",
			Help:    "Time taken to run a hydrostatic computation",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"kind"},
	)

	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "navarch_cache_hits_total",
			Help: "Total number of computation cache hits",
		},
		[]string{"layer"},
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "navarch_cache_misses_total",
			Help: "Total number of computation cache misses",
		},
		[]string{"layer"},
	)

	CacheErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "navarch_cache_errors_total",
			Help: "Total number of cache operation errors",
		},
		[]string{"layer", "operation"},
	)

	APIRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "navarch_api_requests_total",
			Help: "Total number of API requests by path and status",
		},
		[]string{"method", "path", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "navarch_api_request_duration_seconds",
			Help:    "API request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	GZStreamClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "navarch_gz_stream_clients",
			Help: "Number of connected GZ streaming websocket clients",
		},
	)
)
