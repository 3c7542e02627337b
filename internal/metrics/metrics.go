// Attendsync - Time-Clock Attendance Ingestion and Reconciliation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/attendsync

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Device Metrics
	DeviceFetchAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "device_fetch_attempts_total",
			Help: "Total number of device read attempts",
		},
		[]string{"result"}, // "success", "no_data", "open_failed", "read_failed", "malformed", "rejected"
	)

	DeviceFetchCycles = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "device_fetch_cycles_total",
			Help: "Total number of fetch cycles by outcome",
		},
		[]string{"outcome"}, // "success", "exhausted", "permanent"
	)

	DeviceFetchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "device_fetch_duration_seconds",
			Help:    "Duration of a full fetch cycle including retries",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
	)

	DeviceEventsRead = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "device_events_read_total",
			Help: "Total number of punch events read from the device",
		},
	)

	DeviceEventsSkipped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "device_events_skipped_total",
			Help: "Punch events dropped because they failed validation",
		},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	CircuitBreakerConsecutiveFailures = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_consecutive_failures",
			Help: "Current number of consecutive failures",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// Cache Metrics
	CacheRefreshes = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "attendance_cache_refreshes_total",
			Help: "Total number of times the attendance snapshot was replaced",
		},
	)

	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "attendance_cache_lookups_total",
			Help: "Attendance cache lookups by result",
		},
		[]string{"result"}, // "hit", "miss"
	)

	CacheSummaries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "attendance_cache_summaries",
			Help: "Number of user summaries in the current snapshot",
		},
	)

	// Reconcile Metrics
	ReconcileRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reconcile_runs_total",
			Help: "Reconciliation runs by outcome",
		},
		[]string{"outcome"}, // "success", "failure", "skipped_empty", "skipped_overlap", "skipped_stale"
	)

	ReconcileDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "reconcile_duration_seconds",
			Help:    "Duration of a reconciliation transaction",
			Buckets: prometheus.DefBuckets,
		},
	)

	ReconcileRows = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reconcile_rows_total",
			Help: "Attendance rows written by reconciliation",
		},
		[]string{"op"}, // "insert", "update"
	)

	ReconcileLastSuccess = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "reconcile_last_success_timestamp",
			Help: "Unix timestamp of the last successful reconciliation",
		},
	)

	// Database Metrics
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Duration of store queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "table"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "db_query_errors_total",
			Help: "Total number of store query errors",
		},
		[]string{"operation", "table", "error_type"},
	)

	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_rate_limit_hits_total",
			Help: "Total number of rate limit rejections",
		},
		[]string{"endpoint"},
	)
)

// RecordDeviceAttempt records the result of a single device read attempt
func RecordDeviceAttempt(result string, events int) {
	DeviceFetchAttempts.WithLabelValues(result).Inc()
	if events > 0 {
		DeviceEventsRead.Add(float64(events))
	}
}

// RecordFetchCycle records a completed fetch cycle
func RecordFetchCycle(outcome string, duration time.Duration) {
	DeviceFetchCycles.WithLabelValues(outcome).Inc()
	DeviceFetchDuration.Observe(duration.Seconds())
}

// RecordCacheRefresh records a snapshot replacement
func RecordCacheRefresh(summaries int) {
	CacheRefreshes.Inc()
	CacheSummaries.Set(float64(summaries))
}

// RecordCacheLookup records a cache read
func RecordCacheLookup(hit bool) {
	if hit {
		CacheLookups.WithLabelValues("hit").Inc()
		return
	}
	CacheLookups.WithLabelValues("miss").Inc()
}

// RecordReconcile records a reconciliation run
func RecordReconcile(outcome string, duration time.Duration, inserted, updated int) {
	ReconcileRuns.WithLabelValues(outcome).Inc()
	if outcome != "success" && outcome != "failure" {
		return
	}
	ReconcileDuration.Observe(duration.Seconds())
	if outcome == "success" {
		ReconcileRows.WithLabelValues("insert").Add(float64(inserted))
		ReconcileRows.WithLabelValues("update").Add(float64(updated))
		ReconcileLastSuccess.Set(float64(time.Now().Unix()))
	}
}

// RecordDBQuery records a database query metric
func RecordDBQuery(operation, table string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
	if err != nil {
		errorType := err.Error()
		// Truncate long error messages
		if len(errorType) > 50 {
			errorType = errorType[:50]
		}
		DBQueryErrors.WithLabelValues(operation, table, errorType).Inc()
	}
}

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}
