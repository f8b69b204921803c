// MagenSec Audit Analytics - Audit Event Pipeline for the Security Dashboard
// Copyright 2026 MagenSec
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/MagenSec/audit-analytics

package models

// CacheEntry is the JSON document persisted per cache key.
// Timestamp is the write time in Unix milliseconds.
type CacheEntry struct {
	Data      EventBatch `json:"data"`
	Timestamp int64      `json:"timestamp"`
}
