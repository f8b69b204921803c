// MagenSec Audit Analytics - Audit Event Pipeline for the Security Dashboard
// Copyright 2026 MagenSec
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/MagenSec/audit-analytics

/*
Package metrics defines the Prometheus instrumentation of the audit pipeline.

All collectors are registered on the default registry through promauto and
are exposed by the server at /metrics.

Event source:

  - audit_source_page_requests_total{result}: page fetches (success, error, rate_limited)
  - audit_source_page_duration_seconds: latency of a single page request
  - audit_source_pages_per_fetch: pages walked per paginated fetch
  - audit_source_events_total: events received, before de-duplication
  - audit_source_duplicates_total: events dropped as cross-page duplicates
  - audit_source_truncated_total: fetches that hit the page cap

Cache:

  - audit_cache_lookups_total{result}: hit_fresh, hit_stale, miss, error
  - audit_cache_refreshes_total{result}: background refresh success, failure
  - audit_cache_superseded_total: completed fetches discarded for a newer load
  - audit_cache_store_errors_total{op}: backing store get/set failures

HTTP and websocket:

  - api_requests_total, api_request_duration_seconds, api_active_requests
  - websocket_connections_active, websocket_messages_sent_total

Circuit breaker (see internal/source):

  - circuit_breaker_state, circuit_breaker_requests_total,
    circuit_breaker_consecutive_failures, circuit_breaker_state_transitions_total
*/
package metrics
