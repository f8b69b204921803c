// MagenSec Audit Analytics - Audit Event Pipeline for the Security Dashboard
// Copyright 2026 MagenSec
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/MagenSec/audit-analytics

// Package pipeline assembles the audit pipeline shared by the server and the
// CLI: event source client, circuit breaker, paginator, persisted store and
// the cache manager on top.
package pipeline

import (
	"errors"
	"fmt"

	"github.com/MagenSec/audit-analytics/internal/cache"
	"github.com/MagenSec/audit-analytics/internal/config"
	"github.com/MagenSec/audit-analytics/internal/logging"
	"github.com/MagenSec/audit-analytics/internal/source"
)

// ErrBreakerOpen is reported by SourceReady while the breaker rejects calls.
var ErrBreakerOpen = errors.New("audit source circuit breaker is open")

// Pipeline owns the long-lived pipeline components.
type Pipeline struct {
	Manager *cache.Manager
	Entries *cache.EntryCache

	store   cache.ClosableStore
	breaker *source.CircuitBreakerClient
}

// New builds the pipeline from configuration. The caller must Close it.
func New(cfg *config.Config) (*Pipeline, error) {
	client, err := source.NewClient(&cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("create audit source client: %w", err)
	}
	return NewWithPages(cfg, client)
}

// NewWithPages builds the pipeline over an existing page fetcher.
func NewWithPages(cfg *config.Config, pages source.PageFetcher) (*Pipeline, error) {
	p := &Pipeline{}

	if cfg.Source.BreakerEnabled {
		p.breaker = source.NewCircuitBreakerClient(pages, &cfg.Source)
		pages = p.breaker
	}

	store, err := cache.NewStore(&cfg.Cache)
	if err != nil {
		return nil, fmt.Errorf("open cache store: %w", err)
	}
	p.store = store

	p.Entries = cache.NewEntryCache(store, cfg.Cache.TTL)
	p.Manager = cache.NewManager(source.NewPaginator(pages, cfg.Source.MaxPages), p.Entries, &cfg.Cache)

	logging.Info().
		Str("backend", cfg.Cache.Backend).
		Dur("ttl", p.Entries.TTL()).
		Bool("breaker", p.breaker != nil).
		Int("max_pages", cfg.Source.MaxPages).
		Msg("Audit pipeline initialized")
	return p, nil
}

// BreakerState returns the breaker state, or "disabled".
func (p *Pipeline) BreakerState() string {
	if p.breaker == nil {
		return "disabled"
	}
	return p.breaker.State()
}

// SourceReady fails while the breaker is open. Cached data is still served
// then, but a cold org cannot be loaded.
func (p *Pipeline) SourceReady() error {
	if p.BreakerState() == "open" {
		return ErrBreakerOpen
	}
	return nil
}

// Close stops background refreshes, waits for them, then closes the store.
func (p *Pipeline) Close() error {
	p.Manager.Close()
	if err := p.store.Close(); err != nil {
		return fmt.Errorf("close cache store: %w", err)
	}
	return nil
}
