// MagenSec Audit Analytics - Audit Event Pipeline for the Security Dashboard
// Copyright 2026 MagenSec
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/MagenSec/audit-analytics

/*
Package middleware provides the HTTP middleware shared by the analytics API.

All middleware use the func(http.Handler) http.Handler shape, so they plug
straight into chi:

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestLogger(time.Second))
	r.Use(middleware.PrometheusMetrics)
	r.Use(middleware.Compression)

Components:

  - RequestID: honours an upstream X-Request-ID or generates a UUID, echoes
    it in the response and stores it (plus a correlation ID) in the logging
    context.
  - RequestLogger: one zerolog line per request, escalated to a warning when
    the request is slower than the threshold.
  - PrometheusMetrics: request count, latency and in-flight gauge. The
    endpoint label is the chi route pattern, not the raw path, so org IDs do
    not explode label cardinality.
  - Compression: gzip for clients that accept it. Event lists for wide day
    ranges compress well. WebSocket upgrades are passed through untouched.
*/
package middleware
