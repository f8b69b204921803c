// MagenSec Audit Analytics - Audit Event Pipeline for the Security Dashboard
// Copyright 2026 MagenSec
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/MagenSec/audit-analytics

package main

import (
	"bytes"
	"context"
	"io"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/MagenSec/audit-analytics/internal/api"
	"github.com/MagenSec/audit-analytics/internal/config"
	"github.com/MagenSec/audit-analytics/internal/models"
	"github.com/MagenSec/audit-analytics/internal/pipeline"
)

type fakePages struct {
	calls atomic.Int32
}

func (f *fakePages) FetchPage(_ context.Context, _ string, _ int, _ string) (*models.EventPage, error) {
	f.calls.Add(1)
	return &models.EventPage{Events: []models.AuditEvent{
		{ID: "e1", EventType: "DeviceRegistered", PerformedBy: "alice", Timestamp: "2025-01-01T10:00:00Z"},
		{ID: "e2", EventType: "DeviceBlocked", PerformedBy: "alice", Timestamp: "2025-01-01T10:03:00Z"},
		{ID: "e3", EventType: "UserLogin", PerformedBy: "bob", Timestamp: "2025-01-02T08:00:00Z"},
	}}, nil
}

// run executes auditctl with args against pages and returns stdout.
func run(t *testing.T, pages *fakePages, args ...string) (string, error) {
	t.Helper()
	t.Setenv(config.ConfigPathEnvVar, "")

	var out bytes.Buffer
	opts := defaultOptions(&out)
	opts.now = func() time.Time { return time.Date(2025, 1, 3, 12, 0, 0, 0, time.UTC) }
	opts.newPipeline = func(cfg *config.Config) (*pipeline.Pipeline, error) {
		cfg.Cache.RefreshDelay = time.Millisecond
		return pipeline.NewWithPages(cfg, pages)
	}

	cmd := newRootCmd(opts)
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func decode(t *testing.T, out string, v interface{}) {
	t.Helper()
	if err := json.Unmarshal([]byte(out), v); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
}

var sourceFlags = []string{"--org", "acme", "--source-url", "http://audit.test"}

func TestEventsCommand(t *testing.T) {
	pages := &fakePages{}
	out, err := run(t, pages, append(sourceFlags, "events", "--type", "DeviceBlocked")...)
	if err != nil {
		t.Fatalf("events: %v", err)
	}

	var got api.EventsResponse
	decode(t, out, &got)
	if got.OrgID != "acme" || got.RangeDays != 7 {
		t.Errorf("org/range = %s/%d", got.OrgID, got.RangeDays)
	}
	if got.Total != 3 || got.Count != 1 {
		t.Errorf("total/count = %d/%d, want 3/1", got.Total, got.Count)
	}
	if len(got.Events) != 1 || got.Events[0].ID != "e2" {
		t.Errorf("events = %+v", got.Events)
	}
}

func TestTypesCommand(t *testing.T) {
	out, err := run(t, &fakePages{}, append(sourceFlags, "--days", "30", "types")...)
	if err != nil {
		t.Fatalf("types: %v", err)
	}
	var got api.TypesResponse
	decode(t, out, &got)
	if got.RangeDays != 30 || len(got.Types) != 3 {
		t.Errorf("types = %+v", got)
	}
}

func TestSessionsCommand(t *testing.T) {
	out, err := run(t, &fakePages{}, append(sourceFlags, "sessions")...)
	if err != nil {
		t.Fatalf("sessions: %v", err)
	}
	var got api.SessionsResponse
	decode(t, out, &got)
	if s := got.Sessions["alice"]; len(s) != 1 || s[0].EventCount != 2 {
		t.Errorf("alice sessions = %+v", s)
	}
	if got.GapMinutes != 10 {
		t.Errorf("GapMinutes = %v, want 10", got.GapMinutes)
	}
}

func TestSeriesCommand(t *testing.T) {
	tests := []struct {
		name      string
		args      []string
		wantDates []string
		wantLabel string
		wantCount int
	}{
		{"lifecycle", []string{"series", "lifecycle"}, []string{"2025-01-01"}, "Device", 2},
		{"detailed lifecycle", []string{"series", "lifecycle", "--detailed"}, []string{"2025-01-01"}, "Device • Blocked", 1},
		{"logins", []string{"series", "logins"}, []string{"2025-01-02"}, "Success", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := run(t, &fakePages{}, append(sourceFlags, tt.args...)...)
			if err != nil {
				t.Fatalf("series: %v", err)
			}
			var got api.SeriesResponse
			decode(t, out, &got)
			if strings.Join(got.Dates, ",") != strings.Join(tt.wantDates, ",") {
				t.Errorf("dates = %v, want %v", got.Dates, tt.wantDates)
			}
			if len(got.Series) == 0 || got.Series[0].Label != tt.wantLabel || got.Series[0].Data[0] != tt.wantCount {
				t.Errorf("series = %+v, want first %q=%d", got.Series, tt.wantLabel, tt.wantCount)
			}
			if len(got.Totals) == 0 || len(got.Totals) != len(got.Dates) || got.Totals[0] < tt.wantCount {
				t.Errorf("totals = %v for dates %v", got.Totals, got.Dates)
			}
		})
	}
}

func TestSeriesCommand_Timeline(t *testing.T) {
	out, err := run(t, &fakePages{}, append(sourceFlags, "--days", "3", "series", "timeline")...)
	if err != nil {
		t.Fatalf("series timeline: %v", err)
	}
	var got api.SeriesResponse
	decode(t, out, &got)
	want := "2025-01-01,2025-01-02,2025-01-03"
	if strings.Join(got.Dates, ",") != want {
		t.Errorf("dates = %v, want %s", got.Dates, want)
	}
}

func TestCommandErrors(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"missing org", []string{"events"}, "org"},
		{"unknown view", append(sourceFlags, "series", "weekly"), "view"},
		{"bad date", append(sourceFlags, "events", "--from", "yesterday"), "dateFrom"},
		{"range too wide", append(sourceFlags, "--days", "400", "events"), "at most"},
		{"no source", []string{"--org", "acme", "events"}, "no audit source"},
		{"cached only miss", append(sourceFlags, "--cached-only", "events"), "no cached events"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("SOURCE_BASE_URL", "")
			pages := &fakePages{}
			_, err := run(t, pages, tt.args...)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("err = %v, want containing %q", err, tt.wantErr)
			}
			if pages.calls.Load() != 0 {
				t.Errorf("source called %d times", pages.calls.Load())
			}
		})
	}
}

func TestCachedOnly_ReadsPersistedCache(t *testing.T) {
	dir := t.TempDir()
	pages := &fakePages{}

	if _, err := run(t, pages, append(sourceFlags, "--cache-path", dir, "types")...); err != nil {
		t.Fatalf("warm run: %v", err)
	}
	if pages.calls.Load() != 1 {
		t.Fatalf("source calls = %d, want 1", pages.calls.Load())
	}

	out, err := run(t, pages, "--org", "acme", "--cache-path", dir, "--cached-only", "events")
	if err != nil {
		t.Fatalf("cached run: %v", err)
	}
	var got api.EventsResponse
	decode(t, out, &got)
	if got.Total != 3 {
		t.Errorf("cached total = %d, want 3", got.Total)
	}
	if pages.calls.Load() != 1 {
		t.Errorf("source calls after cached run = %d, want 1", pages.calls.Load())
	}
}
