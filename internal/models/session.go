// MagenSec Audit Analytics - Audit Event Pipeline for the Security Dashboard
// Copyright 2026 MagenSec
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/MagenSec/audit-analytics

package models

import "time"

// Session is a contiguous run of one actor's events in which consecutive
// events are never more than the session gap apart. Events are sorted
// ascending by timestamp and are not shared with any other session.
type Session struct {
	Actor      string       `json:"actor"`
	StartTime  time.Time    `json:"startTime"`
	EndTime    time.Time    `json:"endTime"`
	EventCount int          `json:"eventCount"`
	Events     []AuditEvent `json:"events"`
}

// Duration returns EndTime - StartTime.
func (s *Session) Duration() time.Duration {
	return s.EndTime.Sub(s.StartTime)
}

// ActorSummary aggregates the sessions of one actor.
type ActorSummary struct {
	Actor          string        `json:"actor"`
	Sessions       int           `json:"sessions"`
	Events         int           `json:"events"`
	ActiveDuration time.Duration `json:"activeDurationNs"`
	FirstSeen      time.Time     `json:"firstSeen"`
	LastSeen       time.Time     `json:"lastSeen"`
}
