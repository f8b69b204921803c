// MagenSec Audit Analytics - Audit Event Pipeline for the Security Dashboard
// Copyright 2026 MagenSec
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/MagenSec/audit-analytics

package middleware

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/MagenSec/audit-analytics/internal/logging"
)

// RequestLogger logs each request once it completes. Requests slower than
// slow are logged at warn level; 5xx responses at error level.
func RequestLogger(slow time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := newStatusRecorder(w)

			next.ServeHTTP(rec, r)

			duration := time.Since(start)
			log := logging.Ctx(r.Context())

			var event *zerolog.Event
			switch {
			case rec.statusCode >= http.StatusInternalServerError:
				event = log.Error()
			case slow > 0 && duration > slow:
				event = log.Warn().Bool("slow", true)
			default:
				event = log.Debug()
			}

			event.
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Str("route", routePattern(r)).
				Int("status", rec.statusCode).
				Int("bytes", rec.bytes).
				Dur("duration", duration).
				Msg("http request")
		})
	}
}
