// Package metrics provides centralized Prometheus metrics for the application.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics track HTTP request patterns and performance
var (
	// HTTPRequestsTotal counts total HTTP requests by method, path, and status
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestDuration measures HTTP request duration in seconds
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestSize measures HTTP request body size in bytes
	HTTPRequestSize = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_size_bytes",
			Help:    "HTTP request size in bytes",
			Buckets: prometheus.ExponentialBuckets(100, 10, 8),
		},
		[]string{"method", "path"},
	)

	// HTTPResponseSize measures HTTP response body size in bytes
	HTTPResponseSize = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_response_size_bytes",
			Help:    "HTTP response size in bytes",
			Buckets: prometheus.ExponentialBuckets(100, 10, 8),
		},
		[]string{"method", "path"},
	)

	// ActiveConnections tracks the number of active HTTP connections
	ActiveConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_active_connections",
			Help: "Number of active HTTP connections",
		},
	)
)

// Crawl-domain metrics track fetch, anti-bot pacing, and storage pipeline behavior.
var (
	// FetchDuration measures time spent fetching one request (fetcher or renderer).
	FetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "crawl_fetch_duration_seconds",
			Help:    "Time taken to fetch a single request",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10),
		},
		[]string{"site", "method"}, // method: http, render
	)

	// FetchRetriesTotal counts retry attempts made by the fetcher's backoff policy.
	FetchRetriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crawl_fetch_retries_total",
			Help: "Total number of fetch retry attempts",
		},
		[]string{"site"},
	)

	// FetchErrorsTotal counts fetch/parse failures by site and error class.
	FetchErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crawl_fetch_errors_total",
			Help: "Total number of fetch or parse errors",
		},
		[]string{"site", "error_type"},
	)

	// RateLimiterWaitDuration measures time a request spent waiting on the
	// anti-bot token bucket before being allowed to dispatch.
	RateLimiterWaitDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "crawl_ratelimiter_wait_seconds",
			Help:    "Time spent waiting for anti-bot pacing before a request is dispatched",
			Buckets: []float64{0, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		},
		[]string{"site"},
	)

	// PipelineItemsTotal counts items the storage pipeline processed, by outcome.
	PipelineItemsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crawl_pipeline_items_total",
			Help: "Total number of items processed by the storage pipeline",
		},
		[]string{"result"}, // result: stored, duplicate, failed
	)

	// SchedulerJobRunsTotal counts scheduler job executions by trigger kind and outcome.
	SchedulerJobRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crawl_scheduler_job_runs_total",
			Help: "Total number of scheduler job runs by trigger kind and outcome",
		},
		[]string{"trigger", "status"},
	)

	// SchedulerJobDuration measures a scheduler job's end-to-end execution time.
	SchedulerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "crawl_scheduler_job_duration_seconds",
			Help:    "Duration of a scheduler job run",
			Buckets: []float64{1, 5, 30, 60, 300, 900, 1800},
		},
		[]string{"site"},
	)

	// SitesConfigured tracks the number of sites currently loaded from config.
	SitesConfigured = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "crawl_sites_configured",
			Help: "Number of sites currently loaded from site configuration",
		},
	)
)

// Database metrics track database performance
var (
	// DBQueryDuration measures database query duration
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 10),
		},
		[]string{"operation"},
	)

	// DBConnectionsActive tracks active database connections
	DBConnectionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "db_connections_active",
			Help: "Number of active database connections",
		},
	)

	// DBConnectionsIdle tracks idle database connections
	DBConnectionsIdle = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "db_connections_idle",
			Help: "Number of idle database connections",
		},
	)
)

// RecordHTTPRequest records an HTTP request with its metadata
func RecordHTTPRequest(method, path, status string, duration time.Duration, requestSize, responseSize int) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())

	if requestSize > 0 {
		HTTPRequestSize.WithLabelValues(method, path).Observe(float64(requestSize))
	}
	if responseSize > 0 {
		HTTPResponseSize.WithLabelValues(method, path).Observe(float64(responseSize))
	}
}

// RecordOperationDuration records the duration of a named operation
func RecordOperationDuration(operation string, duration time.Duration) {
	DBQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
}
