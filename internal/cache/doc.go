// MagenSec Audit Analytics - Audit Event Pipeline for the Security Dashboard
// Copyright 2026 MagenSec
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/MagenSec/audit-analytics

/*
Package cache implements the stale-while-revalidate loader for audit events.

A load for (orgId, rangeDays) first reads the persisted entry stored under
the literal key "audit_{orgId}_{rangeDays}". When an entry exists it is
returned at once, marked as refreshing, and a background fetch replaces it
after a short settle delay. When no entry exists the caller blocks on a full
paginated fetch.

# Components

  - Store: narrow string key/value interface injected into the loader.
    MemoryStore is an LRU-bounded map; BadgerStore persists across restarts.
  - EntryCache: JSON {data, timestamp} codec over a Store. Entries older
    than the TTL are reported stale but are still returned; staleness never
    deletes anything.
  - Manager: the state machine. Per key it moves through
    Idle → ServingCache → BackgroundRefreshing → Settled, or
    Idle → FetchingFresh → Settled, or ends in Error.

# Ordering

Every fetch the Manager issues takes a generation number for its key. A
fetch that completes after a newer one was issued is discarded (neither
persisted nor published) unless LastResponseWins is configured. Concurrent
blocking loads of one key share a single fetch through singleflight.

# Errors

Store failures and corrupt entries are logged and counted, then treated as a
miss on read and as a no-op on write. Fetch failures on the blocking path are
returned wrapped in ErrFetchFailed; background failures are logged and
reported to subscribers with Updated=false.

# Usage

	store, err := cache.NewStore(&cfg.Cache)
	if err != nil {
	    return err
	}
	defer store.Close()

	mgr := cache.NewManager(paginator, cache.NewEntryCache(store, cfg.Cache.TTL), &cfg.Cache)
	defer mgr.Close()

	res, err := mgr.Load(ctx, "org-1", 7)
*/
package cache
