// MagenSec Audit Analytics - Audit Event Pipeline for the Security Dashboard
// Copyright 2026 MagenSec
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/MagenSec/audit-analytics

package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/MagenSec/audit-analytics/internal/cache"
	"github.com/MagenSec/audit-analytics/internal/config"
	"github.com/MagenSec/audit-analytics/internal/models"
)

var fixedNow = time.Date(2026, 1, 7, 12, 0, 0, 0, time.UTC)

// stubLoader records calls and returns a canned result.
type stubLoader struct {
	mu    sync.Mutex
	calls []string
	batch *models.EventBatch
	err   error
	stale bool
}

func (s *stubLoader) Load(_ context.Context, orgID string, rangeDays int) (*cache.LoadResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, cache.Key(orgID, rangeDays))
	if s.err != nil {
		return nil, s.err
	}
	return &cache.LoadResult{
		Key:        cache.Key(orgID, rangeDays),
		OrgID:      orgID,
		RangeDays:  rangeDays,
		Batch:      s.batch,
		FromCache:  true,
		Stale:      s.stale,
		Refreshing: true,
		FetchedAt:  fixedNow.Add(-time.Minute),
	}, nil
}

func (s *stubLoader) lastCall() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.calls) == 0 {
		return ""
	}
	return s.calls[len(s.calls)-1]
}

func sampleBatch() *models.EventBatch {
	return &models.EventBatch{
		Events: []models.AuditEvent{
			{ID: "e1", EventType: "Device", SubType: "Registered", PerformedBy: "alice", Timestamp: "2026-01-05T10:00:00Z", Description: "laptop enrolled"},
			{ID: "e2", EventType: "Device", SubType: "Registered", PerformedBy: "alice", Timestamp: "2026-01-05T10:05:00Z"},
			{ID: "e3", EventType: "User", SubType: "Login", PerformedBy: "alice", Timestamp: "2026-01-05T10:09:00Z"},
			{ID: "e4", EventType: "User", SubType: "LoginFailed", PerformedBy: "bob", Timestamp: "2026-01-06T08:00:00Z"},
			{ID: "e5", EventType: "Org", SubType: "MemberAdded", PerformedBy: "bob", Timestamp: "2026-01-06T08:15:00Z"},
		},
		UxSummary: json.RawMessage(`{"critical":1}`),
		Pages:     2,
	}
}

func testConfig() *config.Config {
	return &config.Config{
		Analytics: config.AnalyticsConfig{Timezone: "UTC", DefaultRangeDays: 7, MaxRangeDays: 90},
		Server:    config.ServerConfig{CORSOrigins: []string{"http://dashboard.test"}, RateLimitDisabled: true},
	}
}

func newTestRouter(t *testing.T, loader Loader, cfg *config.Config) (*Handler, http.Handler) {
	t.Helper()
	h, err := NewHandler(loader, nil, cfg)
	if err != nil {
		t.Fatalf("NewHandler: %v", err)
	}
	h.now = func() time.Time { return fixedNow }
	return h, NewRouter(h, &cfg.Server).SetupChi()
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *APIError       `json:"error"`
	Meta    *APIMeta        `json:"meta"`
}

func doGet(t *testing.T, handler http.Handler, target string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode %s: %v (body %q)", target, err, rec.Body.String())
	}
	return rec, env
}

func TestEvents_ClassifiesAndFilters(t *testing.T) {
	loader := &stubLoader{batch: sampleBatch(), stale: true}
	_, router := newTestRouter(t, loader, testConfig())

	rec, env := doGet(t, router, "/api/v1/orgs/acme/events?days=30&type=Device:Registered")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if loader.lastCall() != "audit_acme_30" {
		t.Errorf("loaded key = %q", loader.lastCall())
	}

	var data EventsResponse
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if data.Total != 5 || data.Count != 2 || len(data.Events) != 2 {
		t.Fatalf("total=%d count=%d events=%d", data.Total, data.Count, len(data.Events))
	}
	if data.Events[0].TypeKey != "Device:Registered" || data.Events[0].TypeLabel != "Device • Registered" {
		t.Errorf("classification = %+v", data.Events[0])
	}
	if string(data.UxSummary) != `{"critical":1}` {
		t.Errorf("uxSummary = %s", data.UxSummary)
	}

	if env.Meta == nil || env.Meta.Cache == nil {
		t.Fatal("meta.cache missing")
	}
	c := env.Meta.Cache
	if !c.FromCache || !c.Stale || !c.Refreshing || c.Key != "audit_acme_30" || c.Pages != 2 {
		t.Errorf("cache meta = %+v", c)
	}
}

func TestEvents_SearchAndDateRange(t *testing.T) {
	loader := &stubLoader{batch: sampleBatch()}
	_, router := newTestRouter(t, loader, testConfig())

	tests := []struct {
		query string
		want  int
	}{
		{"", 5},
		{"search=LAPTOP", 1},
		{"search=bob", 2},
		{"dateFrom=2026-01-06", 2},
		{"dateTo=2026-01-05", 3},
		{"dateFrom=2026-01-05&dateTo=2026-01-05&type=User", 1},
		{"type=all", 5},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			rec, env := doGet(t, router, "/api/v1/orgs/acme/events?"+tt.query)
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d", rec.Code)
			}
			var data EventsResponse
			if err := json.Unmarshal(env.Data, &data); err != nil {
				t.Fatal(err)
			}
			if data.Count != tt.want {
				t.Errorf("count = %d, want %d", data.Count, tt.want)
			}
		})
	}
}

func TestEvents_DefaultDays(t *testing.T) {
	loader := &stubLoader{batch: sampleBatch()}
	_, router := newTestRouter(t, loader, testConfig())

	doGet(t, router, "/api/v1/orgs/acme/events")
	if loader.lastCall() != "audit_acme_7" {
		t.Errorf("loaded key = %q, want audit_acme_7", loader.lastCall())
	}
}

func TestEvents_InvalidQuery(t *testing.T) {
	loader := &stubLoader{batch: sampleBatch()}
	_, router := newTestRouter(t, loader, testConfig())

	tests := []struct {
		name     string
		target   string
		wantCode string
	}{
		{"days not a number", "/api/v1/orgs/acme/events?days=abc", ErrCodeBadRequest},
		{"days zero", "/api/v1/orgs/acme/events?days=0", ErrCodeValidationFailed},
		{"days above validator max", "/api/v1/orgs/acme/events?days=400", ErrCodeValidationFailed},
		{"days above configured max", "/api/v1/orgs/acme/events?days=120", ErrCodeValidationFailed},
		{"bad org id", "/api/v1/orgs/-acme/events", ErrCodeValidationFailed},
		{"bad date", "/api/v1/orgs/acme/events?dateFrom=yesterday", ErrCodeValidationFailed},
		{"long search", "/api/v1/orgs/acme/events?search=" + strings.Repeat("x", 300), ErrCodeValidationFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, env := doGet(t, router, tt.target)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rec.Code)
			}
			if env.Success || env.Error == nil || env.Error.Code != tt.wantCode {
				t.Errorf("error = %+v, want code %s", env.Error, tt.wantCode)
			}
		})
	}

	if len(loader.calls) != 0 {
		t.Errorf("invalid requests reached the loader: %v", loader.calls)
	}
}

func TestEvents_LoadErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"source failure", fmt.Errorf("%w: %w", cache.ErrFetchFailed, errors.New("HTTP 500")), http.StatusBadGateway, ErrCodeExternalServiceFail},
		{"closed", cache.ErrClosed, http.StatusServiceUnavailable, ErrCodeServiceUnavailable},
		{"other", errors.New("boom"), http.StatusInternalServerError, ErrCodeInternalError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, router := newTestRouter(t, &stubLoader{err: tt.err}, testConfig())
			rec, env := doGet(t, router, "/api/v1/orgs/acme/events")
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if env.Error == nil || env.Error.Code != tt.wantCode {
				t.Errorf("error = %+v", env.Error)
			}
		})
	}
}

func TestTypes_SortedWithCounts(t *testing.T) {
	_, router := newTestRouter(t, &stubLoader{batch: sampleBatch()}, testConfig())

	rec, env := doGet(t, router, "/api/v1/orgs/acme/types?type=User")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var data TypesResponse
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatal(err)
	}

	want := []models.TypeOption{
		{Key: "Device:Registered", Label: "Device • Registered", Count: 2},
		{Key: "Org:MemberAdded", Label: "Org • MemberAdded", Count: 1},
		{Key: "User:Login", Label: "User • Login", Count: 1},
		{Key: "User:LoginFailed", Label: "User • LoginFailed", Count: 1},
	}
	if len(data.Types) != len(want) {
		t.Fatalf("types = %+v", data.Types)
	}
	for i := range want {
		if data.Types[i] != want[i] {
			t.Errorf("types[%d] = %+v, want %+v", i, data.Types[i], want[i])
		}
	}
}

func TestTypes_EmptyBatch(t *testing.T) {
	_, router := newTestRouter(t, &stubLoader{batch: nil}, testConfig())

	_, env := doGet(t, router, "/api/v1/orgs/acme/types")
	if !strings.Contains(string(env.Data), `"types":[]`) {
		t.Errorf("empty types should encode as [], got %s", env.Data)
	}
}

func TestSessions(t *testing.T) {
	_, router := newTestRouter(t, &stubLoader{batch: sampleBatch()}, testConfig())

	rec, env := doGet(t, router, "/api/v1/orgs/acme/sessions")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var data SessionsResponse
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatal(err)
	}

	if data.GapMinutes != 10 {
		t.Errorf("gap = %v", data.GapMinutes)
	}
	if got := data.Sessions["alice"]; len(got) != 1 || got[0].EventCount != 3 {
		t.Errorf("alice sessions = %+v", got)
	}
	if got := data.Sessions["bob"]; len(got) != 2 {
		t.Errorf("bob sessions = %d, want 2", len(got))
	}
	if len(data.Summary) != 2 {
		t.Errorf("summary = %+v", data.Summary)
	}
}

func TestSeries_Views(t *testing.T) {
	_, router := newTestRouter(t, &stubLoader{batch: sampleBatch()}, testConfig())

	tests := []struct {
		target    string
		wantDates int
		wantKeys  []string
	}{
		{"/api/v1/orgs/acme/series/daily", 2, []string{"Device:Registered", "Org:MemberAdded", "User:Login", "User:LoginFailed"}},
		{"/api/v1/orgs/acme/series/timeline?days=7", 7, []string{"Device:Registered", "Org:MemberAdded", "User:Login", "User:LoginFailed"}},
		{"/api/v1/orgs/acme/series/lifecycle", 2, []string{"Device", "Org"}},
		{"/api/v1/orgs/acme/series/logins", 2, []string{"Failure", "Success"}},
	}

	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			rec, env := doGet(t, router, tt.target)
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
			}
			var data SeriesResponse
			if err := json.Unmarshal(env.Data, &data); err != nil {
				t.Fatal(err)
			}
			if len(data.Dates) != tt.wantDates {
				t.Errorf("dates = %v", data.Dates)
			}
			keys := make(map[string]bool)
			sums := make([]int, len(data.Dates))
			for _, s := range data.Series {
				keys[s.Key] = true
				if len(s.Data) != len(data.Dates) {
					t.Errorf("series %s has %d points for %d dates", s.Key, len(s.Data), len(data.Dates))
				}
				for i := 0; i < len(s.Data) && i < len(sums); i++ {
					sums[i] += s.Data[i]
				}
			}
			if len(data.Totals) != len(sums) {
				t.Fatalf("totals = %v for %d dates", data.Totals, len(data.Dates))
			}
			for i, want := range sums {
				if data.Totals[i] != want {
					t.Errorf("totals[%d] = %d, want %d", i, data.Totals[i], want)
				}
			}
			for _, k := range tt.wantKeys {
				if !keys[k] {
					t.Errorf("missing series %q in %v", k, keys)
				}
			}
			if len(keys) != len(tt.wantKeys) {
				t.Errorf("series keys = %v, want %v", keys, tt.wantKeys)
			}
		})
	}
}

func TestSeries_TimelineEndsToday(t *testing.T) {
	_, router := newTestRouter(t, &stubLoader{batch: sampleBatch()}, testConfig())

	_, env := doGet(t, router, "/api/v1/orgs/acme/series/timeline?days=7")
	var data SeriesResponse
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatal(err)
	}
	if data.Dates[0] != "2026-01-01" || data.Dates[6] != "2026-01-07" {
		t.Errorf("axis = %v", data.Dates)
	}
}

func TestSeries_UnknownView(t *testing.T) {
	_, router := newTestRouter(t, &stubLoader{batch: sampleBatch()}, testConfig())

	rec, env := doGet(t, router, "/api/v1/orgs/acme/series/pie")
	if rec.Code != http.StatusBadRequest || env.Error == nil || env.Error.Code != ErrCodeValidationFailed {
		t.Errorf("status = %d, error = %+v", rec.Code, env.Error)
	}

	rec, _ = doGet(t, router, "/api/v1/orgs/acme/series/lifecycle?detailed=maybe")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad detailed flag status = %d", rec.Code)
	}
}

func TestHealth(t *testing.T) {
	h, router := newTestRouter(t, &stubLoader{}, testConfig())

	rec, env := doGet(t, router, "/api/v1/health/live")
	if rec.Code != http.StatusOK || !env.Success {
		t.Errorf("live status = %d", rec.Code)
	}

	rec, _ = doGet(t, router, "/api/v1/health/ready")
	if rec.Code != http.StatusOK {
		t.Errorf("ready with no checks = %d", rec.Code)
	}

	h.AddReadinessCheck("source", func(context.Context) error { return errors.New("breaker open") })
	rec, env = doGet(t, router, "/api/v1/health/ready")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("ready with failing check = %d", rec.Code)
	}
	if !strings.Contains(string(rec.Body.Bytes()), "breaker open") {
		t.Errorf("failure detail missing: %s", rec.Body.String())
	}
	if env.Error == nil || env.Error.Code != ErrCodeServiceUnavailable {
		t.Errorf("error = %+v", env.Error)
	}
}

func TestRouter_NotFoundIsJSON(t *testing.T) {
	_, router := newTestRouter(t, &stubLoader{}, testConfig())

	rec, env := doGet(t, router, "/api/v1/nope")
	if rec.Code != http.StatusNotFound || env.Error == nil || env.Error.Code != ErrCodeNotFound {
		t.Errorf("status = %d, error = %+v", rec.Code, env.Error)
	}
}

func TestRouter_SecurityHeadersAndRequestID(t *testing.T) {
	_, router := newTestRouter(t, &stubLoader{batch: sampleBatch()}, testConfig())

	rec, env := doGet(t, router, "/api/v1/orgs/acme/types")
	if rec.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("missing nosniff header")
	}
	if rec.Header().Get("Cache-Control") != "no-store" {
		t.Error("missing no-store header")
	}
	id := rec.Header().Get("X-Request-ID")
	if id == "" || env.Meta == nil || env.Meta.RequestID != id {
		t.Errorf("request id header %q, meta %+v", id, env.Meta)
	}
}

func TestRouter_RateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.Server.RateLimitDisabled = false
	cfg.Server.RateLimitReqs = 1
	cfg.Server.RateLimitWindow = time.Minute
	_, router := newTestRouter(t, &stubLoader{batch: sampleBatch()}, cfg)

	rec, _ := doGet(t, router, "/api/v1/orgs/acme/types")
	if rec.Code != http.StatusOK {
		t.Fatalf("first request = %d", rec.Code)
	}
	rec, env := doGet(t, router, "/api/v1/orgs/acme/types")
	if rec.Code != http.StatusTooManyRequests || env.Error == nil || env.Error.Code != ErrCodeTooManyRequests {
		t.Errorf("second request = %d, %+v", rec.Code, env.Error)
	}
}

func TestNewHandler_BadTimezone(t *testing.T) {
	cfg := testConfig()
	cfg.Analytics.Timezone = "Mars/Olympus"
	if _, err := NewHandler(&stubLoader{}, nil, cfg); err == nil {
		t.Error("expected error for unknown timezone")
	}
}

func TestSanitizeLogValue(t *testing.T) {
	if got := sanitizeLogValue("a\nb\x7f"); got != `a\x0ab\x7f` {
		t.Errorf("sanitizeLogValue = %q", got)
	}
}
