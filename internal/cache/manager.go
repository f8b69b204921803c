// MagenSec Audit Analytics - Audit Event Pipeline for the Security Dashboard
// Copyright 2026 MagenSec
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/MagenSec/audit-analytics

package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/MagenSec/audit-analytics/internal/config"
	"github.com/MagenSec/audit-analytics/internal/logging"
	"github.com/MagenSec/audit-analytics/internal/metrics"
	"github.com/MagenSec/audit-analytics/internal/models"
)

// DefaultRefreshDelay is the settle delay before a background refresh.
const DefaultRefreshDelay = 250 * time.Millisecond

var (
	// ErrFetchFailed wraps source errors on the blocking (cache miss) path.
	ErrFetchFailed = errors.New("audit fetch failed")

	// ErrNotFound is returned by Peek when nothing is cached for the key.
	ErrNotFound = errors.New("no cached audit events")

	// ErrClosed is returned by Load after Close.
	ErrClosed = errors.New("cache manager closed")
)

// Fetcher retrieves every event of an org's day range.
type Fetcher interface {
	Fetch(ctx context.Context, orgID string, days int) (*models.EventBatch, error)
}

// State is the per-key loader state.
type State int

const (
	StateIdle State = iota
	StateServingCache
	StateBackgroundRefreshing
	StateFetchingFresh
	StateSettled
	StateError
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateServingCache:
		return "serving_cache"
	case StateBackgroundRefreshing:
		return "background_refreshing"
	case StateFetchingFresh:
		return "fetching_fresh"
	case StateSettled:
		return "settled"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// LoadResult is what a caller renders right away.
type LoadResult struct {
	Key        string
	OrgID      string
	RangeDays  int
	Batch      *models.EventBatch
	FromCache  bool
	Stale      bool
	Refreshing bool
	FetchedAt  time.Time
}

// Update is delivered to subscribers when a fetch settles. Updated is true
// when Batch replaced the cached entry; on background failure Updated is
// false and Err is set.
type Update struct {
	Key       string
	OrgID     string
	RangeDays int
	Batch     *models.EventBatch
	Updated   bool
	Err       error
}

// Manager coordinates cache reads, blocking fetches and background
// refreshes. Safe for concurrent use.
type Manager struct {
	fetcher          Fetcher
	entries          *EntryCache
	refreshDelay     time.Duration
	lastResponseWins bool

	group    singleflight.Group
	commitMu sync.Mutex

	mu          sync.Mutex
	generations map[string]uint64
	states      map[string]State
	subscribers map[int]func(Update)
	nextSubID   int
	closed      bool

	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewManager creates a Manager. Background refreshes run on an internal
// context that Close cancels.
func NewManager(fetcher Fetcher, entries *EntryCache, cfg *config.CacheConfig) *Manager {
	ctx, cancel := context.WithCancel(context.Background())

	m := &Manager{
		fetcher:      fetcher,
		entries:      entries,
		refreshDelay: DefaultRefreshDelay,
		generations:  make(map[string]uint64),
		states:       make(map[string]State),
		subscribers:  make(map[int]func(Update)),
		ctx:          ctx,
		cancel:       cancel,
	}
	if cfg != nil {
		if cfg.RefreshDelay > 0 {
			m.refreshDelay = cfg.RefreshDelay
		}
		m.lastResponseWins = cfg.LastResponseWins
	}
	return m
}

// Load returns the events for orgID over rangeDays.
//
// With a cached entry (fresh or stale) it returns immediately with
// Refreshing set and schedules a background refresh. Without one it blocks
// on a fetch; a failure is returned wrapped in ErrFetchFailed.
func (m *Manager) Load(ctx context.Context, orgID string, rangeDays int) (*LoadResult, error) {
	if m.ctx.Err() != nil {
		return nil, ErrClosed
	}
	key := Key(orgID, rangeDays)

	if entry, ok := m.entries.Get(key); ok {
		if entry.IsStale {
			metrics.RecordCacheLookup(metrics.LookupHitStale)
		} else {
			metrics.RecordCacheLookup(metrics.LookupHitFresh)
		}
		m.setState(key, StateServingCache)
		m.startRefresh(key, orgID, rangeDays)

		logging.Debug().
			Str("key", key).
			Bool("stale", entry.IsStale).
			Int("events", len(entry.Batch.Events)).
			Msg("serving cached audit events")

		return &LoadResult{
			Key:        key,
			OrgID:      orgID,
			RangeDays:  rangeDays,
			Batch:      entry.Batch,
			FromCache:  true,
			Stale:      entry.IsStale,
			Refreshing: true,
			FetchedAt:  entry.Timestamp,
		}, nil
	}

	metrics.RecordCacheLookup(metrics.LookupMiss)
	m.setState(key, StateFetchingFresh)

	// The shared fetch outlives any single caller; each caller only stops
	// waiting when its own context ends.
	ch := m.group.DoChan(key, func() (interface{}, error) {
		return m.fetchShared(ctx, key, orgID, rangeDays)
	})

	var res singleflight.Result
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res = <-ch:
	}
	if errors.Is(res.Err, ErrClosed) {
		return nil, ErrClosed
	}
	if res.Err != nil {
		m.setState(key, StateError)
		logging.Error().Err(res.Err).Str("key", key).Msg("audit fetch failed")
		return nil, fmt.Errorf("%w: %w", ErrFetchFailed, res.Err)
	}
	v, shared := res.Val, res.Shared

	logging.Debug().Str("key", key).Bool("shared", shared).Msg("audit events fetched on cache miss")

	return &LoadResult{
		Key:       key,
		OrgID:     orgID,
		RangeDays: rangeDays,
		Batch:     v.(*models.EventBatch),
		FetchedAt: m.entries.now(),
	}, nil
}

// fetchShared runs the blocking fetch for key. It keeps the values of the
// first caller's context but not its cancellation, and stops when the
// manager is closed.
func (m *Manager) fetchShared(parent context.Context, key, orgID string, rangeDays int) (*models.EventBatch, error) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil, ErrClosed
	}
	m.wg.Add(1)
	m.mu.Unlock()
	defer m.wg.Done()

	ctx, cancel := context.WithCancel(context.WithoutCancel(parent))
	defer cancel()
	stop := context.AfterFunc(m.ctx, cancel)
	defer stop()

	gen := m.nextGeneration(key)
	batch, err := m.fetcher.Fetch(ctx, orgID, rangeDays)
	if err != nil {
		if m.ctx.Err() != nil {
			return nil, ErrClosed
		}
		return nil, err
	}
	m.commit(key, orgID, rangeDays, gen, batch)
	return batch, nil
}

// Peek returns the cached entry without fetching or scheduling a refresh.
func (m *Manager) Peek(orgID string, rangeDays int) (*Entry, error) {
	entry, ok := m.entries.Get(Key(orgID, rangeDays))
	if !ok {
		return nil, ErrNotFound
	}
	return entry, nil
}

// startRefresh fetches fresh data after the settle delay.
func (m *Manager) startRefresh(key, orgID string, rangeDays int) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.wg.Add(1)
	m.mu.Unlock()

	go func() {
		defer m.wg.Done()

		timer := time.NewTimer(m.refreshDelay)
		select {
		case <-m.ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}

		m.setState(key, StateBackgroundRefreshing)
		gen := m.nextGeneration(key)

		batch, err := m.fetcher.Fetch(m.ctx, orgID, rangeDays)
		metrics.RecordRefresh(err)
		if err != nil {
			if m.ctx.Err() != nil {
				return
			}
			// Stale data stays in place.
			logging.Warn().Err(err).Str("key", key).Msg("background refresh failed")
			m.setState(key, StateSettled)
			m.publish(Update{Key: key, OrgID: orgID, RangeDays: rangeDays, Err: err})
			return
		}
		m.commit(key, orgID, rangeDays, gen, batch)
	}()
}

// commit persists and publishes batch unless a newer fetch was issued. The
// generation check and the write happen under commitMu, so a response that
// passed the check cannot land after a newer one.
func (m *Manager) commit(key, orgID string, rangeDays int, gen uint64, batch *models.EventBatch) bool {
	m.commitMu.Lock()
	if !m.lastResponseWins && gen != m.generation(key) {
		m.commitMu.Unlock()
		metrics.CacheSuperseded.Inc()
		logging.Debug().Str("key", key).Uint64("generation", gen).Msg("discarding superseded audit response")
		return false
	}
	m.entries.Set(key, batch)
	m.setState(key, StateSettled)
	m.commitMu.Unlock()

	m.publish(Update{Key: key, OrgID: orgID, RangeDays: rangeDays, Batch: batch, Updated: true})
	return true
}

// Subscribe registers fn for settled updates. fn runs on the goroutine that
// completed the fetch and must not block. The returned func unsubscribes.
func (m *Manager) Subscribe(fn func(Update)) func() {
	m.mu.Lock()
	id := m.nextSubID
	m.nextSubID++
	m.subscribers[id] = fn
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		delete(m.subscribers, id)
		m.mu.Unlock()
	}
}

func (m *Manager) publish(u Update) {
	m.mu.Lock()
	subs := make([]func(Update), 0, len(m.subscribers))
	for _, fn := range m.subscribers {
		subs = append(subs, fn)
	}
	m.mu.Unlock()

	for _, fn := range subs {
		fn(u)
	}
}

// State returns the loader state for key.
func (m *Manager) State(key string) State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.states[key]
}

func (m *Manager) setState(key string, s State) {
	m.mu.Lock()
	m.states[key] = s
	m.mu.Unlock()
}

func (m *Manager) nextGeneration(key string) uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.generations[key]++
	return m.generations[key]
}

func (m *Manager) generation(key string) uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.generations[key]
}

// Wait blocks until every scheduled background refresh has finished.
func (m *Manager) Wait() {
	m.wg.Wait()
}

// Close cancels pending and in-flight refreshes and waits for them.
func (m *Manager) Close() {
	m.closeOnce.Do(func() {
		m.mu.Lock()
		m.closed = true
		m.mu.Unlock()
		m.cancel()
		m.wg.Wait()
	})
}
