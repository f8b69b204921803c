// MagenSec Audit Analytics - Audit Event Pipeline for the Security Dashboard
// Copyright 2026 MagenSec
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/MagenSec/audit-analytics

package api

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/MagenSec/audit-analytics/internal/cache"
	"github.com/MagenSec/audit-analytics/internal/config"
	ws "github.com/MagenSec/audit-analytics/internal/websocket"
)

// Loader returns an org's event batch, possibly from cache.
// *cache.Manager satisfies it.
type Loader interface {
	Load(ctx context.Context, orgID string, rangeDays int) (*cache.LoadResult, error)
}

// ReadinessCheck reports whether a dependency can serve traffic.
type ReadinessCheck func(ctx context.Context) error

// Handler serves the analytics endpoints.
type Handler struct {
	loader    Loader
	wsHub     *ws.Hub
	config    *config.Config
	loc       *time.Location
	now       func() time.Time
	startTime time.Time

	mu     sync.RWMutex
	checks map[string]ReadinessCheck
}

// NewHandler creates a Handler. hub may be nil, in which case the WebSocket
// endpoint answers 503. The analytics timezone is resolved here so a bad
// value fails at startup rather than per request.
func NewHandler(loader Loader, hub *ws.Hub, cfg *config.Config) (*Handler, error) {
	loc := time.UTC
	if cfg != nil {
		l, err := cfg.Analytics.Location()
		if err != nil {
			return nil, err
		}
		loc = l
	}

	return &Handler{
		loader:    loader,
		wsHub:     hub,
		config:    cfg,
		loc:       loc,
		now:       time.Now,
		startTime: time.Now(),
		checks:    make(map[string]ReadinessCheck),
	}, nil
}

// AddReadinessCheck registers a named check consulted by HealthReady.
func (h *Handler) AddReadinessCheck(name string, check ReadinessCheck) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.checks[name] = check
}

// runChecks returns the failing checks by name.
func (h *Handler) runChecks(ctx context.Context) map[string]string {
	h.mu.RLock()
	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	checks := make(map[string]ReadinessCheck, len(h.checks))
	for k, v := range h.checks {
		checks[k] = v
	}
	h.mu.RUnlock()

	sort.Strings(names)
	failed := make(map[string]string)
	for _, name := range names {
		if err := checks[name](ctx); err != nil {
			failed[name] = err.Error()
		}
	}
	return failed
}

// defaultDays is the range used when a request omits days.
func (h *Handler) defaultDays() int {
	if h.config != nil && h.config.Analytics.DefaultRangeDays > 0 {
		return h.config.Analytics.DefaultRangeDays
	}
	return 7
}

// maxDays is the largest accepted range.
func (h *Handler) maxDays() int {
	if h.config != nil && h.config.Analytics.MaxRangeDays > 0 {
		return h.config.Analytics.MaxRangeDays
	}
	return 365
}
