// MagenSec Audit Analytics - Audit Event Pipeline for the Security Dashboard
// Copyright 2026 MagenSec
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/MagenSec/audit-analytics

package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Event source
	SourcePageRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "audit_source_page_requests_total",
			Help: "Total number of audit page requests by result",
		},
		[]string{"result"}, // success, error, rate_limited
	)

	SourcePageDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "audit_source_page_duration_seconds",
			Help:    "Duration of a single audit page request in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
	)

	SourcePagesPerFetch = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "audit_source_pages_per_fetch",
			Help:    "Number of pages walked by one paginated fetch",
			Buckets: []float64{1, 2, 5, 10, 20, 35, 50},
		},
	)

	SourceEvents = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "audit_source_events_total",
			Help: "Total number of audit events received from the source",
		},
	)

	SourceDuplicates = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "audit_source_duplicates_total",
			Help: "Total number of audit events dropped as cross-page duplicates",
		},
	)

	SourceTruncated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "audit_source_truncated_total",
			Help: "Total number of paginated fetches stopped by the page cap",
		},
	)

	// Cache
	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "audit_cache_lookups_total",
			Help: "Total number of cache lookups by result",
		},
		[]string{"result"}, // hit_fresh, hit_stale, miss, error
	)

	CacheRefreshes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "audit_cache_refreshes_total",
			Help: "Total number of background cache refreshes by result",
		},
		[]string{"result"}, // success, failure
	)

	CacheSuperseded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "audit_cache_superseded_total",
			Help: "Total number of completed fetches discarded because a newer load was issued",
		},
	)

	CacheStoreErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "audit_cache_store_errors_total",
			Help: "Total number of backing store failures",
		},
		[]string{"op"}, // get, set, decode, encode
	)

	CacheStoreEvictions = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "audit_cache_store_evictions_total",
			Help: "Total number of keys evicted from the bounded in-memory store",
		},
	)

	CacheWarmLoads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "audit_cache_warm_loads_total",
			Help: "Total number of loads issued by the cache warmer by result",
		},
		[]string{"result"}, // success, failure
	)

	// API
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

	// WebSocket
	WSConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "websocket_connections_active",
			Help: "Current number of active WebSocket connections",
		},
	)

	WSMessagesSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "websocket_messages_sent_total",
			Help: "Total number of WebSocket messages sent by type",
		},
		[]string{"type"},
	)

	// Circuit breaker
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
		[]string{"name", "result"}, // success, failure, rejected
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
)

// Cache lookup results.
const (
	LookupHitFresh = "hit_fresh"
	LookupHitStale = "hit_stale"
	LookupMiss     = "miss"
	LookupError    = "error"
)

// RecordPageRequest records one page request.
func RecordPageRequest(result string, duration time.Duration) {
	SourcePageRequests.WithLabelValues(result).Inc()
	SourcePageDuration.Observe(duration.Seconds())
}

// RecordFetch records the outcome of a complete paginated fetch.
func RecordFetch(pages, received, duplicates int, truncated bool) {
	SourcePagesPerFetch.Observe(float64(pages))
	SourceEvents.Add(float64(received))
	SourceDuplicates.Add(float64(duplicates))
	if truncated {
		SourceTruncated.Inc()
	}
}

// RecordCacheLookup records a lookup with one of the Lookup* results.
func RecordCacheLookup(result string) {
	CacheLookups.WithLabelValues(result).Inc()
}

// RecordRefresh records a background refresh outcome.
func RecordRefresh(err error) {
	if err != nil {
		CacheRefreshes.WithLabelValues("failure").Inc()
		return
	}
	CacheRefreshes.WithLabelValues("success").Inc()
}

// RecordWarmLoad records one warmer load.
func RecordWarmLoad(err error) {
	if err != nil {
		CacheWarmLoads.WithLabelValues("failure").Inc()
		return
	}
	CacheWarmLoads.WithLabelValues("success").Inc()
}

// RecordAPIRequest records an API request metric.
func RecordAPIRequest(method, endpoint string, statusCode int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(statusCode)).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest increments or decrements the in-flight request gauge.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}
