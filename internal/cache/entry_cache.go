// MagenSec Audit Analytics - Audit Event Pipeline for the Security Dashboard
// Copyright 2026 MagenSec
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/MagenSec/audit-analytics

package cache

import (
	"fmt"
	"time"

	"github.com/goccy/go-json"

	"github.com/MagenSec/audit-analytics/internal/logging"
	"github.com/MagenSec/audit-analytics/internal/metrics"
	"github.com/MagenSec/audit-analytics/internal/models"
)

// DefaultTTL separates fresh entries from stale ones.
const DefaultTTL = 30 * time.Minute

// Key returns the store key for an org and day range.
func Key(orgID string, rangeDays int) string {
	return fmt.Sprintf("audit_%s_%d", orgID, rangeDays)
}

// Entry is a decoded cache entry.
type Entry struct {
	Batch     *models.EventBatch
	Timestamp time.Time
	IsStale   bool
}

// EntryCache stores event batches as JSON {data, timestamp} documents.
// It never returns an error: store and decode failures degrade to a miss
// on read and to a no-op on write.
type EntryCache struct {
	store Store
	ttl   time.Duration
	now   func() time.Time
}

// NewEntryCache wraps store. A ttl <= 0 uses DefaultTTL.
func NewEntryCache(store Store, ttl time.Duration) *EntryCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &EntryCache{store: store, ttl: ttl, now: time.Now}
}

// TTL returns the freshness window.
func (c *EntryCache) TTL() time.Duration { return c.ttl }

// Get returns the entry for key. Stale entries are returned with IsStale set.
func (c *EntryCache) Get(key string) (*Entry, bool) {
	raw, ok, err := c.store.Get(key)
	if err != nil {
		metrics.CacheStoreErrors.WithLabelValues("get").Inc()
		logging.Warn().Err(err).Str("key", key).Msg("cache read failed, treating as miss")
		return nil, false
	}
	if !ok {
		return nil, false
	}

	var doc models.CacheEntry
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		metrics.CacheStoreErrors.WithLabelValues("decode").Inc()
		logging.Warn().Err(err).Str("key", key).Msg("corrupt cache entry, treating as miss")
		return nil, false
	}
	if doc.Data.Events == nil {
		doc.Data.Events = []models.AuditEvent{}
	}

	ts := time.UnixMilli(doc.Timestamp)
	return &Entry{
		Batch:     &doc.Data,
		Timestamp: ts,
		IsStale:   c.now().Sub(ts) >= c.ttl,
	}, true
}

// Set overwrites the entry for key with batch, stamped with the current time.
// Returns false when the write did not happen.
func (c *EntryCache) Set(key string, batch *models.EventBatch) bool {
	doc := models.CacheEntry{Timestamp: c.now().UnixMilli()}
	if batch != nil {
		doc.Data = *batch
	}

	raw, err := json.Marshal(&doc)
	if err != nil {
		metrics.CacheStoreErrors.WithLabelValues("encode").Inc()
		logging.Warn().Err(err).Str("key", key).Msg("cache entry encode failed, skipping write")
		return false
	}
	if err := c.store.Set(key, string(raw)); err != nil {
		metrics.CacheStoreErrors.WithLabelValues("set").Inc()
		logging.Warn().Err(err).Str("key", key).Msg("cache write failed, skipping")
		return false
	}
	return true
}
