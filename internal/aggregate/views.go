// MagenSec Audit Analytics - Audit Event Pipeline for the Security Dashboard
// Copyright 2026 MagenSec
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/MagenSec/audit-analytics

package aggregate

import (
	"time"

	"github.com/MagenSec/audit-analytics/internal/classify"
	"github.com/MagenSec/audit-analytics/internal/models"
)

// LifecycleOptions controls lifecycle grouping.
type LifecycleOptions struct {
	// Detailed splits each category by derived subtype ("Device • Registered").
	// Events without a subtype fall back to the bare category.
	Detailed bool
}

const lifecycleSeparator = " • "

// LifecycleKey returns the lifecycle grouping key for an event, or false when
// the event is excluded from lifecycle grouping.
func LifecycleKey(e *models.AuditEvent, opts LifecycleOptions) (string, bool) {
	cat, ok := classify.LifecycleCategory(e)
	if !ok {
		return "", false
	}
	if !opts.Detailed {
		return string(cat), true
	}
	if sub := classify.LifecycleSubType(e, cat); sub != "" {
		return string(cat) + lifecycleSeparator + sub, true
	}
	return string(cat), true
}

// GroupLifecycleEvents aggregates device and org lifecycle events. Events the
// lifecycle rule table excludes do not appear in the result.
func GroupLifecycleEvents(events []models.AuditEvent, opts LifecycleOptions, loc *time.Location) models.SeriesResult {
	return GroupByDayCustom(events, func(e *models.AuditEvent) (string, string, bool) {
		key, ok := LifecycleKey(e, opts)
		return key, key, ok
	}, loc)
}

// GroupLoginEvents aggregates sign-in attempts into Success and Failure series.
func GroupLoginEvents(events []models.AuditEvent, loc *time.Location) models.SeriesResult {
	return GroupByDayCustom(events, func(e *models.AuditEvent) (string, string, bool) {
		if !classify.IsLoginEvent(e) {
			return "", "", false
		}
		outcome := string(classify.OutcomeOf(e))
		return outcome, outcome, true
	}, loc)
}

// Chart view names accepted by BuildView.
const (
	ViewDaily     = "daily"
	ViewTimeline  = "timeline"
	ViewLifecycle = "lifecycle"
	ViewLogins    = "logins"
)

// ViewRequest selects a chart view and its parameters.
type ViewRequest struct {
	View      string
	RangeDays int
	Now       time.Time
	Detailed  bool
}

// BuildView dispatches to the aggregator for req.View. Unknown views fall
// back to the daily type breakdown. Dates and Series are never nil.
func BuildView(events []models.AuditEvent, req ViewRequest, loc *time.Location) models.SeriesResult {
	var result models.SeriesResult
	switch req.View {
	case ViewTimeline:
		result = DenseTimeline(events, req.RangeDays, req.Now, loc)
	case ViewLifecycle:
		result = GroupLifecycleEvents(events, LifecycleOptions{Detailed: req.Detailed}, loc)
	case ViewLogins:
		result = GroupLoginEvents(events, loc)
	default:
		result = GroupByDayAndType(events, loc)
	}

	if result.Dates == nil {
		result.Dates = []string{}
	}
	if result.Series == nil {
		result.Series = []models.Series{}
	}
	return result
}
