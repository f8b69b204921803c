// MagenSec Audit Analytics - Audit Event Pipeline for the Security Dashboard
// Copyright 2026 MagenSec
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/MagenSec/audit-analytics

package cache

import (
	"sync"

	"github.com/MagenSec/audit-analytics/internal/metrics"
)

// memoryEntry is a node of the recency list.
type memoryEntry struct {
	key   string
	value string
	prev  *memoryEntry
	next  *memoryEntry
}

// MemoryStore is a thread-safe Store bounded to a fixed number of keys. When
// full, the least recently used key is evicted, the way a browser storage
// quota drops old data.
//
// It uses a doubly-linked list for ordering and a hashmap for lookups, so
// Get, Set and eviction are all O(1).
type MemoryStore struct {
	mu sync.Mutex

	capacity int
	items    map[string]*memoryEntry

	// head.next is the most recently used, tail.prev the least recently used
	head *memoryEntry
	tail *memoryEntry
}

// NewMemoryStore creates a MemoryStore holding at most capacity keys.
func NewMemoryStore(capacity int) *MemoryStore {
	if capacity <= 0 {
		capacity = DefaultMaxEntries
	}

	s := &MemoryStore{
		capacity: capacity,
		items:    make(map[string]*memoryEntry, capacity),
		head:     &memoryEntry{},
		tail:     &memoryEntry{},
	}
	s.head.next = s.tail
	s.tail.prev = s.head
	return s
}

// Get returns the value for key and marks it most recently used.
func (s *MemoryStore) Get(key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.items[key]
	if !ok {
		return "", false, nil
	}
	s.moveToFront(entry)
	return entry.value, true, nil
}

// Set stores value under key, replacing any previous value wholesale.
func (s *MemoryStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entry, ok := s.items[key]; ok {
		entry.value = value
		s.moveToFront(entry)
		return nil
	}

	entry := &memoryEntry{key: key, value: value}
	s.addToFront(entry)
	s.items[key] = entry

	for len(s.items) > s.capacity {
		s.evictOldest()
	}
	return nil
}

// Close is a no-op.
func (s *MemoryStore) Close() error { return nil }

// Internal methods (must be called with lock held)

func (s *MemoryStore) addToFront(entry *memoryEntry) {
	entry.prev = s.head
	entry.next = s.head.next
	s.head.next.prev = entry
	s.head.next = entry
}

func (s *MemoryStore) moveToFront(entry *memoryEntry) {
	entry.prev.next = entry.next
	entry.next.prev = entry.prev
	s.addToFront(entry)
}

func (s *MemoryStore) removeEntry(entry *memoryEntry) {
	entry.prev.next = entry.next
	entry.next.prev = entry.prev
	delete(s.items, entry.key)
}

func (s *MemoryStore) evictOldest() {
	oldest := s.tail.prev
	if oldest == s.head {
		return
	}
	s.removeEntry(oldest)
	metrics.CacheStoreEvictions.Inc()
}
