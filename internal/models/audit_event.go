// MagenSec Audit Analytics - Audit Event Pipeline for the Security Dashboard
// Copyright 2026 MagenSec
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/MagenSec/audit-analytics

package models

import (
	"time"

	"github.com/goccy/go-json"
)

// DefaultActor is used when an event carries no performedBy value.
const DefaultActor = "System"

// AuditEvent represents a single audit record for an organization.
//
// Timestamp is kept exactly as received (ISO-8601). Sources are heterogeneous
// and a malformed timestamp must not fail decoding of the whole page, so the
// value is parsed lazily via Time().
type AuditEvent struct {
	ID          string                 `json:"id,omitempty"`
	EventType   string                 `json:"eventType"`
	SubType     string                 `json:"subType,omitempty"`
	Timestamp   string                 `json:"timestamp"`
	PerformedBy string                 `json:"performedBy,omitempty"`
	OrgID       string                 `json:"orgId,omitempty"`
	TargetID    string                 `json:"targetId,omitempty"`
	TargetType  string                 `json:"targetType,omitempty"`
	Description string                 `json:"description,omitempty"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
}

// Actor returns the performing actor, defaulting to DefaultActor.
func (e *AuditEvent) Actor() string {
	if e.PerformedBy == "" {
		return DefaultActor
	}
	return e.PerformedBy
}

// Time parses the event timestamp. The second return value is false when the
// timestamp is missing or not a recognizable ISO-8601 instant.
func (e *AuditEvent) Time() (time.Time, bool) {
	return ParseTimestamp(e.Timestamp)
}

// MetadataString returns metadata[key] when it is a non-empty string.
func (e *AuditEvent) MetadataString(key string) string {
	if e.Metadata == nil {
		return ""
	}
	if s, ok := e.Metadata[key].(string); ok {
		return s
	}
	return ""
}

// timestampLayouts are tried in order. Sources emit RFC 3339 with and without
// fractional seconds, and occasionally omit the zone designator.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// ParseTimestamp parses an ISO-8601 instant. Values without a zone are read as UTC.
func ParseTimestamp(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ClassifiedEvent is an AuditEvent annotated with its derived classification.
// It is what the dashboard's event table renders.
type ClassifiedEvent struct {
	AuditEvent
	TypeKey           string `json:"typeKey"`
	TypeLabel         string `json:"typeLabel"`
	BaseType          string `json:"baseType"`
	Icon              string `json:"icon"`
	Color             string `json:"color"`
	LifecycleCategory string `json:"lifecycleCategory,omitempty"`
	IsNotification    bool   `json:"isNotification"`
}

// EventPage is one page returned by the event source.
type EventPage struct {
	Events            []AuditEvent    `json:"events"`
	ContinuationToken string          `json:"continuationToken,omitempty"`
	UxSummary         json.RawMessage `json:"uxSummary,omitempty"`
}

// EventBatch is the accumulated result of a paginated fetch. It is also the
// payload persisted in a cache entry.
type EventBatch struct {
	Events    []AuditEvent    `json:"events"`
	UxSummary json.RawMessage `json:"uxSummary,omitempty"`
	Pages     int             `json:"pages,omitempty"`
	Truncated bool            `json:"truncated,omitempty"`
}

// Filters mirrors the dashboard filter bar. Empty fields do not constrain.
type Filters struct {
	EventType string `json:"eventType"`
	Search    string `json:"search"`
	DateFrom  string `json:"dateFrom"`
	DateTo    string `json:"dateTo"`
}

// TypeOption is one entry of the event-type filter dropdown.
type TypeOption struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Count int    `json:"count"`
}
