// MagenSec Audit Analytics - Audit Event Pipeline for the Security Dashboard
// Copyright 2026 MagenSec
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/MagenSec/audit-analytics

package cache

import (
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/MagenSec/audit-analytics/internal/config"
	"github.com/MagenSec/audit-analytics/internal/metrics"
)

func TestMemoryStore_GetSet(t *testing.T) {
	s := NewMemoryStore(3)

	if _, ok, err := s.Get("a"); ok || err != nil {
		t.Fatalf("Get on empty store = ok %v, err %v", ok, err)
	}
	if err := s.Set("a", "1"); err != nil {
		t.Fatal(err)
	}
	if err := s.Set("a", "2"); err != nil {
		t.Fatal(err)
	}
	v, ok, err := s.Get("a")
	if !ok || err != nil || v != "2" {
		t.Errorf("Get(a) = %q, %v, %v; want 2, true, nil", v, ok, err)
	}
	if len(s.items) != 1 {
		t.Errorf("stored keys = %d, want 1", len(s.items))
	}
}

func TestMemoryStore_EvictsLeastRecentlyUsed(t *testing.T) {
	before := testutil.ToFloat64(metrics.CacheStoreEvictions)

	s := NewMemoryStore(3)
	_ = s.Set("a", "1")
	_ = s.Set("b", "2")
	_ = s.Set("c", "3")

	// Touch 'a' so 'b' becomes least recently used
	_, _, _ = s.Get("a")
	_ = s.Set("d", "4")

	if _, ok, _ := s.Get("b"); ok {
		t.Error("expected 'b' to be evicted")
	}
	for _, k := range []string{"a", "c", "d"} {
		if _, ok, _ := s.Get(k); !ok {
			t.Errorf("expected %q to be present", k)
		}
	}
	if got := testutil.ToFloat64(metrics.CacheStoreEvictions) - before; got != 1 {
		t.Errorf("evictions metric delta = %v, want 1", got)
	}
}

func TestBadgerStore_PersistsAcrossReopen(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "cache")

	s, err := OpenBadgerStore(dir)
	if err != nil {
		t.Fatalf("OpenBadgerStore() error = %v", err)
	}
	if _, ok, err := s.Get("audit_org_7"); ok || err != nil {
		t.Fatalf("Get on empty db = ok %v, err %v", ok, err)
	}
	if err := s.Set("audit_org_7", `{"data":{"events":[]},"timestamp":1}`); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	s, err = OpenBadgerStore(dir)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer s.Close()

	v, ok, err := s.Get("audit_org_7")
	if err != nil || !ok {
		t.Fatalf("Get after reopen = ok %v, err %v", ok, err)
	}
	if v != `{"data":{"events":[]},"timestamp":1}` {
		t.Errorf("value = %s", v)
	}
}

func TestNewStore(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.CacheConfig
		want    string
		wantErr bool
	}{
		{"default", config.CacheConfig{}, "memory", false},
		{"memory", config.CacheConfig{Backend: BackendMemory, MaxEntries: 2}, "memory", false},
		{"badger", config.CacheConfig{Backend: BackendBadger, Path: t.TempDir()}, "badger", false},
		{"unknown", config.CacheConfig{Backend: "redis"}, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewStore(&tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewStore() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			defer s.Close()

			switch s.(type) {
			case *MemoryStore:
				if tt.want != "memory" {
					t.Errorf("got MemoryStore, want %s", tt.want)
				}
			case *BadgerStore:
				if tt.want != "badger" {
					t.Errorf("got BadgerStore, want %s", tt.want)
				}
			}
		})
	}
}
