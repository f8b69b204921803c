// MagenSec Audit Analytics - Audit Event Pipeline for the Security Dashboard
// Copyright 2026 MagenSec
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/MagenSec/audit-analytics

package api

import (
	"net/http"

	"github.com/goccy/go-json"

	"github.com/MagenSec/audit-analytics/internal/aggregate"
	"github.com/MagenSec/audit-analytics/internal/cache"
	"github.com/MagenSec/audit-analytics/internal/classify"
	"github.com/MagenSec/audit-analytics/internal/filter"
	"github.com/MagenSec/audit-analytics/internal/logging"
	"github.com/MagenSec/audit-analytics/internal/models"
	"github.com/MagenSec/audit-analytics/internal/sessions"
	"github.com/MagenSec/audit-analytics/internal/validation"
)

// EventsResponse is the payload of the events endpoint.
type EventsResponse struct {
	OrgID     string                   `json:"orgId"`
	RangeDays int                      `json:"rangeDays"`
	Total     int                      `json:"total"`
	Count     int                      `json:"count"`
	Filters   models.Filters           `json:"filters"`
	Events    []models.ClassifiedEvent `json:"events"`
	UxSummary json.RawMessage          `json:"uxSummary,omitempty"`
}

// TypesResponse is the payload of the types endpoint.
type TypesResponse struct {
	OrgID     string              `json:"orgId"`
	RangeDays int                 `json:"rangeDays"`
	Total     int                 `json:"total"`
	Types     []models.TypeOption `json:"types"`
}

// SessionsResponse is the payload of the sessions endpoint.
type SessionsResponse struct {
	OrgID      string                      `json:"orgId"`
	RangeDays  int                         `json:"rangeDays"`
	GapMinutes float64                     `json:"gapMinutes"`
	Sessions   map[string][]models.Session `json:"sessions"`
	Summary    []models.ActorSummary       `json:"summary"`
}

// SeriesResponse is the payload of the series endpoints.
type SeriesResponse struct {
	OrgID     string `json:"orgId"`
	RangeDays int    `json:"rangeDays"`
	View      string `json:"view"`
	Totals    []int  `json:"totals"`
	models.SeriesResult
}

// NewSeriesResponse wraps result with its per-date totals.
func NewSeriesResponse(orgID string, rangeDays int, view string, result models.SeriesResult) SeriesResponse {
	return SeriesResponse{
		OrgID:        orgID,
		RangeDays:    rangeDays,
		View:         view,
		Totals:       result.Totals(),
		SeriesResult: result,
	}
}

// load fetches the batch for q through the cache manager.
func (h *Handler) load(rw *ResponseWriter, r *http.Request, q validation.OrgQuery) (*cache.LoadResult, bool) {
	res, err := h.loader.Load(r.Context(), q.OrgID, q.Days)
	if err != nil {
		writeLoadError(rw, r, q.OrgID, err)
		return nil, false
	}
	if res.Batch == nil {
		res.Batch = &models.EventBatch{Events: []models.AuditEvent{}}
	}

	logging.Ctx(r.Context()).Debug().
		Str("org_id", q.OrgID).
		Int("range_days", q.Days).
		Int("events", len(res.Batch.Events)).
		Bool("from_cache", res.FromCache).
		Bool("stale", res.Stale).
		Msg("audit batch loaded")
	return res, true
}

// Events returns classified events after filtering.
func (h *Handler) Events(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	q, ok := h.parseEventsQuery(rw, r)
	if !ok {
		return
	}
	res, ok := h.load(rw, r, q.OrgQuery)
	if !ok {
		return
	}

	filters := filtersOf(q)
	matched := filter.Apply(res.Batch.Events, filters, h.loc)

	rw.SuccessWithCache(EventsResponse{
		OrgID:     q.OrgID,
		RangeDays: q.Days,
		Total:     len(res.Batch.Events),
		Count:     len(matched),
		Filters:   filters,
		Events:    classify.ClassifyAll(matched),
		UxSummary: res.Batch.UxSummary,
	}, res)
}

// Types returns the type filter options over the unfiltered batch.
func (h *Handler) Types(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	q, ok := h.parseOrgQuery(rw, r)
	if !ok {
		return
	}
	res, ok := h.load(rw, r, q)
	if !ok {
		return
	}

	types := filter.TypeOptions(res.Batch.Events)
	if types == nil {
		types = []models.TypeOption{}
	}

	rw.SuccessWithCache(TypesResponse{
		OrgID:     q.OrgID,
		RangeDays: q.Days,
		Total:     len(res.Batch.Events),
		Types:     types,
	}, res)
}

// Sessions groups the filtered events into per-actor activity sessions.
func (h *Handler) Sessions(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	q, ok := h.parseEventsQuery(rw, r)
	if !ok {
		return
	}
	res, ok := h.load(rw, r, q.OrgQuery)
	if !ok {
		return
	}

	matched := filter.Apply(res.Batch.Events, filtersOf(q), h.loc)
	grouped := sessions.ComputeUserSessions(matched)
	summary := sessions.Summarize(grouped)
	if summary == nil {
		summary = []models.ActorSummary{}
	}

	rw.SuccessWithCache(SessionsResponse{
		OrgID:      q.OrgID,
		RangeDays:  q.Days,
		GapMinutes: sessions.SessionGap.Minutes(),
		Sessions:   grouped,
		Summary:    summary,
	}, res)
}

// Series aggregates the filtered events into a chart series for one view.
func (h *Handler) Series(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	q, ok := h.parseSeriesQuery(rw, r)
	if !ok {
		return
	}
	res, ok := h.load(rw, r, q.OrgQuery)
	if !ok {
		return
	}

	matched := filter.Apply(res.Batch.Events, filtersOf(q.EventsQuery), h.loc)
	result := h.buildSeries(q, matched)
	if result.Skipped > 0 {
		logging.Ctx(r.Context()).Warn().
			Str("org_id", q.OrgID).
			Str("view", q.View).
			Int("skipped", result.Skipped).
			Msg("events with unreadable timestamps left out of series")
	}

	rw.SuccessWithCache(NewSeriesResponse(q.OrgID, q.Days, q.View, result), res)
}

// buildSeries computes q.View over events. The view is validated before
// this is called.
func (h *Handler) buildSeries(q validation.SeriesQuery, events []models.AuditEvent) models.SeriesResult {
	return aggregate.BuildView(events, aggregate.ViewRequest{
		View:      q.View,
		RangeDays: q.Days,
		Now:       h.now(),
		Detailed:  q.Detailed,
	}, h.loc)
}
