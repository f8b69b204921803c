// MagenSec Audit Analytics - Audit Event Pipeline for the Security Dashboard
// Copyright 2026 MagenSec
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/MagenSec/audit-analytics

package validation

import "github.com/MagenSec/audit-analytics/internal/aggregate"

// MaxRangeDays is the widest day range the API accepts.
const MaxRangeDays = 365

// Series views accepted by SeriesQuery.View.
const (
	ViewDaily     = aggregate.ViewDaily
	ViewTimeline  = aggregate.ViewTimeline
	ViewLifecycle = aggregate.ViewLifecycle
	ViewLogins    = aggregate.ViewLogins
)

// OrgQuery identifies one cache key: an org and a trailing day range.
type OrgQuery struct {
	OrgID string `query:"orgId" validate:"required,orgid"`
	Days  int    `query:"days" validate:"min=1,max=365"`
}

// EventsQuery is the filter bar of the events table.
type EventsQuery struct {
	OrgQuery
	Type     string `query:"type" validate:"omitempty,max=128"`
	Search   string `query:"search" validate:"omitempty,max=256"`
	DateFrom string `query:"dateFrom" validate:"omitempty,filterdate"`
	DateTo   string `query:"dateTo" validate:"omitempty,filterdate"`
}

// SeriesQuery selects a chart view over the filtered events.
type SeriesQuery struct {
	EventsQuery
	View     string `query:"view" validate:"required,oneof=daily timeline lifecycle logins"`
	Detailed bool   `query:"detailed"`
}
