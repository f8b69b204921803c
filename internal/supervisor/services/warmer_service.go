// MagenSec Audit Analytics - Audit Event Pipeline for the Security Dashboard
// Copyright 2026 MagenSec
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/MagenSec/audit-analytics

package services

import (
	"context"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/MagenSec/audit-analytics/internal/cache"
	"github.com/MagenSec/audit-analytics/internal/config"
	"github.com/MagenSec/audit-analytics/internal/logging"
	"github.com/MagenSec/audit-analytics/internal/metrics"
)

// Warmer defaults.
const (
	DefaultWarmInterval    = 5 * time.Minute
	DefaultWarmRangeDays   = 7
	DefaultWarmConcurrency = 4
)

// Loader is the cache manager's load operation.
type Loader interface {
	Load(ctx context.Context, orgID string, rangeDays int) (*cache.LoadResult, error)
}

// WarmerService keeps the configured orgs in cache by loading them on an
// interval. A load of a cached key returns at once and schedules a
// background refresh, so each pass both fills misses and revalidates hits.
type WarmerService struct {
	loader      Loader
	orgs        []string
	rangeDays   int
	interval    time.Duration
	concurrency int
	name        string

	passes atomic.Int64
}

// NewWarmerService creates a warmer from the warmer config section.
func NewWarmerService(loader Loader, cfg *config.WarmerConfig) *WarmerService {
	w := &WarmerService{
		loader:      loader,
		rangeDays:   DefaultWarmRangeDays,
		interval:    DefaultWarmInterval,
		concurrency: DefaultWarmConcurrency,
		name:        "cache-warmer",
	}
	if cfg != nil {
		w.orgs = append([]string(nil), cfg.Orgs...)
		if cfg.RangeDays > 0 {
			w.rangeDays = cfg.RangeDays
		}
		if cfg.Interval > 0 {
			w.interval = cfg.Interval
		}
		if cfg.Concurrency > 0 {
			w.concurrency = cfg.Concurrency
		}
	}
	return w
}

// Serve implements suture.Service. The first pass runs immediately.
func (w *WarmerService) Serve(ctx context.Context) error {
	logger := logging.WithComponent("cache-warmer")
	logger.Info().
		Strs("orgs", w.orgs).
		Int("range_days", w.rangeDays).
		Dur("interval", w.interval).
		Msg("Cache warmer started")

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		failed := w.WarmOnce(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		logger.Debug().Int("orgs", len(w.orgs)).Int("failed", failed).Msg("Cache warm pass complete")

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// WarmOnce loads every configured org once with bounded concurrency and
// returns the number of failed loads. Failures never stop the pass.
func (w *WarmerService) WarmOnce(ctx context.Context) int {
	defer w.passes.Add(1)

	var failed atomic.Int64
	var g errgroup.Group
	g.SetLimit(w.concurrency)

	for _, org := range w.orgs {
		if ctx.Err() != nil {
			break
		}
		org := org
		g.Go(func() error {
			_, err := w.loader.Load(ctx, org, w.rangeDays)
			metrics.RecordWarmLoad(err)
			if err != nil {
				failed.Add(1)
				if ctx.Err() == nil {
					logging.Warn().Err(err).Str("org_id", org).Int("range_days", w.rangeDays).Msg("Cache warm load failed")
				}
			}
			return nil
		})
	}
	_ = g.Wait()
	return int(failed.Load())
}

// Passes returns the number of completed warm passes.
func (w *WarmerService) Passes() int64 {
	return w.passes.Load()
}

// String implements fmt.Stringer for logging.
func (w *WarmerService) String() string {
	return w.name
}
