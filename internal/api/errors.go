// MagenSec Audit Analytics - Audit Event Pipeline for the Security Dashboard
// Copyright 2026 MagenSec
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/MagenSec/audit-analytics

package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/MagenSec/audit-analytics/internal/cache"
	"github.com/MagenSec/audit-analytics/internal/logging"
	"github.com/MagenSec/audit-analytics/internal/validation"
)

var (
	// ErrHubUnavailable is returned when the WebSocket hub was not wired.
	ErrHubUnavailable = errors.New("websocket hub not configured")

	// ErrNotReady is reported by the readiness check while a check fails.
	ErrNotReady = errors.New("service not ready")
)

// writeLoadError maps a cache manager failure onto an HTTP error response.
func writeLoadError(rw *ResponseWriter, r *http.Request, orgID string, err error) {
	switch {
	case errors.Is(err, cache.ErrFetchFailed):
		rw.ExternalServiceError("audit-source", err)
	case errors.Is(err, cache.ErrClosed):
		rw.ServiceUnavailable("Audit cache is shutting down")
	case errors.Is(err, context.Canceled):
		// Client went away; nothing useful can be written.
		logging.Ctx(r.Context()).Debug().Str("org_id", orgID).Msg("audit load canceled by client")
	default:
		logging.Ctx(r.Context()).Error().Err(err).Str("org_id", orgID).Msg("audit load failed")
		rw.InternalError("Failed to load audit events")
	}
}

// writeValidationError renders validator failures as a 400 body.
func writeValidationError(rw *ResponseWriter, verr *validation.RequestValidationError) {
	apiErr := verr.ToAPIError()
	rw.ErrorWithDetails(http.StatusBadRequest, apiErr.Code, apiErr.Message, apiErr.Details)
}
