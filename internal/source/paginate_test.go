// MagenSec Audit Analytics - Audit Event Pipeline for the Security Dashboard
// Copyright 2026 MagenSec
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/MagenSec/audit-analytics

package source

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/goccy/go-json"

	"github.com/MagenSec/audit-analytics/internal/models"
)

// fakePages serves a fixed page sequence keyed by continuation token.
type fakePages struct {
	pages  map[string]*models.EventPage
	errAt  string
	calls  []string
	always bool // every token yields a page with a fresh continuation token
}

func (f *fakePages) FetchPage(_ context.Context, _ string, _ int, token string) (*models.EventPage, error) {
	f.calls = append(f.calls, token)
	if f.errAt != "" && token == f.errAt {
		return nil, errors.New("source unavailable")
	}
	if f.always {
		return &models.EventPage{
			Events:            []models.AuditEvent{{ID: fmt.Sprintf("e-%d", len(f.calls)), EventType: "A"}},
			ContinuationToken: fmt.Sprintf("t-%d", len(f.calls)),
		}, nil
	}
	p, ok := f.pages[token]
	if !ok {
		return nil, fmt.Errorf("unexpected token %q", token)
	}
	return p, nil
}

func TestFetchAll_FollowsTokens(t *testing.T) {
	f := &fakePages{pages: map[string]*models.EventPage{
		"": {
			Events:            []models.AuditEvent{{ID: "1", EventType: "A"}, {ID: "2", EventType: "B"}},
			ContinuationToken: "p2",
			UxSummary:         json.RawMessage(`{"v":1}`),
		},
		"p2": {
			Events:            []models.AuditEvent{{ID: "2", EventType: "B"}, {ID: "3", EventType: "C"}},
			ContinuationToken: "p3",
			UxSummary:         json.RawMessage(`{"v":2}`),
		},
		"p3": {
			Events: []models.AuditEvent{{ID: "4", EventType: "D"}},
		},
	}}

	batch, err := FetchAll(context.Background(), f, "org", 7, 50)
	if err != nil {
		t.Fatalf("FetchAll() error = %v", err)
	}
	if batch.Pages != 3 || batch.Truncated {
		t.Errorf("Pages = %d, Truncated = %v", batch.Pages, batch.Truncated)
	}
	var ids []string
	for _, e := range batch.Events {
		ids = append(ids, e.ID)
	}
	if fmt.Sprint(ids) != "[1 2 3 4]" {
		t.Errorf("ids = %v, want [1 2 3 4] (deduplicated, in order)", ids)
	}
	if string(batch.UxSummary) != `{"v":2}` {
		t.Errorf("UxSummary = %s, want last page's", batch.UxSummary)
	}
	if fmt.Sprint(f.calls) != "[ p2 p3]" {
		t.Errorf("calls = %q", f.calls)
	}
}

func TestFetchAll_PageCap(t *testing.T) {
	f := &fakePages{always: true}

	batch, err := FetchAll(context.Background(), f, "org", 7, 50)
	if err != nil {
		t.Fatalf("FetchAll() error = %v", err)
	}
	if len(f.calls) != 50 || batch.Pages != 50 {
		t.Errorf("calls = %d, pages = %d; want 50", len(f.calls), batch.Pages)
	}
	if !batch.Truncated {
		t.Error("Truncated = false at page cap")
	}
	if len(batch.Events) != 50 {
		t.Errorf("events = %d, want 50", len(batch.Events))
	}
}

func TestFetchAll_DefaultCap(t *testing.T) {
	f := &fakePages{always: true}
	p := NewPaginator(f, 0)
	if _, err := p.Fetch(context.Background(), "org", 7); err != nil {
		t.Fatal(err)
	}
	if len(f.calls) != DefaultMaxPages {
		t.Errorf("calls = %d, want %d", len(f.calls), DefaultMaxPages)
	}
}

func TestFetchAll_ErrorAborts(t *testing.T) {
	f := &fakePages{
		pages: map[string]*models.EventPage{
			"": {Events: []models.AuditEvent{{ID: "1"}}, ContinuationToken: "p2"},
		},
		errAt: "p2",
	}

	batch, err := FetchAll(context.Background(), f, "org", 7, 50)
	if err == nil {
		t.Fatal("expected error")
	}
	if batch != nil {
		t.Errorf("batch = %+v, want nil on error", batch)
	}
	if len(f.calls) != 2 {
		t.Errorf("calls = %d, want 2", len(f.calls))
	}
}

func TestFetchAll_RepeatedTokenStops(t *testing.T) {
	f := &fakePages{pages: map[string]*models.EventPage{
		"":     {Events: []models.AuditEvent{{ID: "1"}}, ContinuationToken: "same"},
		"same": {Events: []models.AuditEvent{{ID: "2"}}, ContinuationToken: "same"},
	}}

	batch, err := FetchAll(context.Background(), f, "org", 7, 50)
	if err != nil {
		t.Fatal(err)
	}
	if batch.Pages != 2 || len(batch.Events) != 2 {
		t.Errorf("pages = %d, events = %d; want 2, 2", batch.Pages, len(batch.Events))
	}
}

func TestEventIdentity(t *testing.T) {
	a := models.AuditEvent{EventType: "A", Timestamp: "2025-01-01T00:00:00Z", Metadata: map[string]interface{}{"x": 1, "y": "z"}}
	b := models.AuditEvent{EventType: "A", Timestamp: "2025-01-01T00:00:00Z", Metadata: map[string]interface{}{"y": "z", "x": 1}}
	c := models.AuditEvent{EventType: "A", Timestamp: "2025-01-01T00:00:01Z"}

	if eventIdentity(&a) != eventIdentity(&b) {
		t.Error("identical content must hash identically")
	}
	if eventIdentity(&a) == eventIdentity(&c) {
		t.Error("different content must hash differently")
	}
	withID := models.AuditEvent{ID: "abc", EventType: "A"}
	if eventIdentity(&withID) != "id:abc" {
		t.Errorf("eventIdentity() = %q, want id:abc", eventIdentity(&withID))
	}
}
