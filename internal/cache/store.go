// MagenSec Audit Analytics - Audit Event Pipeline for the Security Dashboard
// Copyright 2026 MagenSec
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/MagenSec/audit-analytics

package cache

import (
	"fmt"
	"io"

	"github.com/MagenSec/audit-analytics/internal/config"
)

// Backend names accepted by NewStore.
const (
	BackendMemory = "memory"
	BackendBadger = "badger"
)

// DefaultMaxEntries bounds a MemoryStore created without an explicit size.
const DefaultMaxEntries = 256

// Store is the persisted key/value store behind the cache. Values are opaque
// strings; a missing key is reported as ok=false with a nil error.
type Store interface {
	Get(key string) (value string, ok bool, err error)
	Set(key, value string) error
}

// ClosableStore is a Store that owns resources.
type ClosableStore interface {
	Store
	io.Closer
}

// NewStore creates the backend selected by cfg.Backend.
func NewStore(cfg *config.CacheConfig) (ClosableStore, error) {
	switch cfg.Backend {
	case "", BackendMemory:
		return NewMemoryStore(cfg.MaxEntries), nil
	case BackendBadger:
		return OpenBadgerStore(cfg.Path)
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}
