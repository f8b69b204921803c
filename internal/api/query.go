// MagenSec Audit Analytics - Audit Event Pipeline for the Security Dashboard
// Copyright 2026 MagenSec
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/MagenSec/audit-analytics

package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/MagenSec/audit-analytics/internal/models"
	"github.com/MagenSec/audit-analytics/internal/validation"
)

// parseOrgQuery reads the org path parameter and the days query parameter.
// On failure the error response is already written and ok is false.
func (h *Handler) parseOrgQuery(rw *ResponseWriter, r *http.Request) (q validation.OrgQuery, ok bool) {
	q.OrgID = chi.URLParam(r, "orgId")
	q.Days = h.defaultDays()

	if raw := strings.TrimSpace(r.URL.Query().Get("days")); raw != "" {
		days, err := strconv.Atoi(raw)
		if err != nil {
			rw.BadRequest("days must be an integer")
			return q, false
		}
		q.Days = days
	}

	if verr := validation.ValidateStruct(&q); verr != nil {
		writeValidationError(rw, verr)
		return q, false
	}
	if q.Days > h.maxDays() {
		rw.Error(http.StatusBadRequest, ErrCodeValidationFailed,
			fmt.Sprintf("days must be at most %d", h.maxDays()))
		return q, false
	}
	return q, true
}

// parseEventsQuery adds the filter parameters to parseOrgQuery.
func (h *Handler) parseEventsQuery(rw *ResponseWriter, r *http.Request) (q validation.EventsQuery, ok bool) {
	q.OrgQuery, ok = h.parseOrgQuery(rw, r)
	if !ok {
		return q, false
	}

	values := r.URL.Query()
	q.Type = strings.TrimSpace(values.Get("type"))
	q.Search = values.Get("search")
	q.DateFrom = strings.TrimSpace(values.Get("dateFrom"))
	q.DateTo = strings.TrimSpace(values.Get("dateTo"))

	if verr := validation.ValidateStruct(&q); verr != nil {
		writeValidationError(rw, verr)
		return q, false
	}
	return q, true
}

// parseSeriesQuery adds the view path parameter and the detailed flag.
func (h *Handler) parseSeriesQuery(rw *ResponseWriter, r *http.Request) (q validation.SeriesQuery, ok bool) {
	q.EventsQuery, ok = h.parseEventsQuery(rw, r)
	if !ok {
		return q, false
	}

	q.View = chi.URLParam(r, "view")
	if raw := r.URL.Query().Get("detailed"); raw != "" {
		detailed, err := strconv.ParseBool(raw)
		if err != nil {
			rw.BadRequest("detailed must be a boolean")
			return q, false
		}
		q.Detailed = detailed
	}

	if verr := validation.ValidateStruct(&q); verr != nil {
		writeValidationError(rw, verr)
		return q, false
	}
	return q, true
}

// filtersOf converts validated query parameters into filter criteria.
func filtersOf(q validation.EventsQuery) models.Filters {
	return models.Filters{
		EventType: q.Type,
		Search:    q.Search,
		DateFrom:  q.DateFrom,
		DateTo:    q.DateTo,
	}
}
