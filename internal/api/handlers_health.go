// MagenSec Audit Analytics - Audit Event Pipeline for the Security Dashboard
// Copyright 2026 MagenSec
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/MagenSec/audit-analytics

package api

import (
	"context"
	"net/http"
	"time"
)

// readinessTimeout bounds the total time spent in readiness checks.
const readinessTimeout = 2 * time.Second

// HealthLive handles liveness check requests (Kubernetes-style).
// Returns 200 OK if the process is alive, regardless of dependencies.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	NewResponseWriter(w, r).Success(map[string]interface{}{
		"alive":  true,
		"uptime": time.Since(h.startTime).Seconds(),
	})
}

// HealthReady handles readiness check requests (Kubernetes-style).
// Returns 200 OK only when every registered readiness check passes.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
	defer cancel()

	if failed := h.runChecks(ctx); len(failed) > 0 {
		rw.ServiceUnavailableWithDetails(ErrNotReady.Error(), map[string]interface{}{
			"failed": failed,
		})
		return
	}

	data := map[string]interface{}{
		"ready":  true,
		"uptime": time.Since(h.startTime).Seconds(),
	}
	if h.wsHub != nil {
		data["ws_clients"] = h.wsHub.GetClientCount()
	}
	rw.Success(data)
}
