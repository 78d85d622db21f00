package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ClassAnalyticsBuilds counts full class rollup computations, cache
	// misses included.
	ClassAnalyticsBuilds = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "academe",
		Subsystem: "analytics",
		Name:      "class_rollup_builds_total",
		Help:      "Number of class analytics rollups computed from the ledger.",
	})

	// ClassAnalyticsCacheHits counts class rollups served from cache.
	ClassAnalyticsCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "academe",
		Subsystem: "analytics",
		Name:      "class_rollup_cache_hits_total",
		Help:      "Number of class analytics responses served from cache.",
	})

	// ClassAnalyticsBuildDuration tracks how long a full rollup takes.
	ClassAnalyticsBuildDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "academe",
		Subsystem: "analytics",
		Name:      "class_rollup_duration_seconds",
		Help:      "Duration of class analytics rollup computations.",
		Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
	})
)

var (
	registerOnce      sync.Once
	apiRequestsTotal  *prometheus.CounterVec
	apiLatencySeconds *prometheus.HistogramVec
	apiErrorsTotal    *prometheus.CounterVec
)

// RegisterMetrics initialises the Prometheus collectors used for request observability.
func RegisterMetrics() {
	registerOnce.Do(func() {
		apiRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		apiLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "api_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		apiErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "api_errors_total",
			Help: "Total number of error responses returned by API endpoints.",
		}, []string{"method", "route", "status"})

		prometheus.MustRegister(apiRequestsTotal, apiLatencySeconds, apiErrorsTotal)
	})
}

// APIRequests exposes the counter for API requests.
func APIRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return apiRequestsTotal
}

// APILatency exposes the latency histogram for API requests.
func APILatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return apiLatencySeconds
}

// APIErrors exposes the counter for API error responses.
func APIErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return apiErrorsTotal
}
