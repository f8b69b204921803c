// MagenSec Audit Analytics - Audit Event Pipeline for the Security Dashboard
// Copyright 2026 MagenSec
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/MagenSec/audit-analytics

// Package sessions groups each actor's audit events into activity sessions.
//
// A session is a maximal run of one actor's events in which consecutive
// events are at most SessionGap apart (inclusive). Grouping is a single
// linear scan over each actor's time-sorted events.
package sessions

import (
	"sort"
	"time"

	"github.com/MagenSec/audit-analytics/internal/models"
)

// SessionGap is the largest gap between consecutive events of one session.
const SessionGap = 10 * time.Minute

type timedEvent struct {
	at    time.Time
	event models.AuditEvent
}

// ComputeUserSessions partitions events by actor and merges each actor's
// events into sessions. Events whose timestamp cannot be parsed are not
// placed in any session. Sessions in each slice are ordered by start time.
func ComputeUserSessions(events []models.AuditEvent) map[string][]models.Session {
	byActor := make(map[string][]timedEvent)
	for i := range events {
		at, ok := events[i].Time()
		if !ok {
			continue
		}
		actor := events[i].Actor()
		byActor[actor] = append(byActor[actor], timedEvent{at: at, event: events[i]})
	}

	out := make(map[string][]models.Session, len(byActor))
	for actor, timed := range byActor {
		sort.SliceStable(timed, func(i, j int) bool { return timed[i].at.Before(timed[j].at) })
		out[actor] = windowSessions(actor, timed)
	}
	return out
}

// windowSessions merges sorted events into sessions in one pass.
func windowSessions(actor string, timed []timedEvent) []models.Session {
	var result []models.Session
	var current *models.Session

	for _, te := range timed {
		if current != nil && te.at.Sub(current.EndTime) <= SessionGap {
			current.EndTime = te.at
			current.EventCount++
			current.Events = append(current.Events, te.event)
			continue
		}
		if current != nil {
			result = append(result, *current)
		}
		current = &models.Session{
			Actor:      actor,
			StartTime:  te.at,
			EndTime:    te.at,
			EventCount: 1,
			Events:     []models.AuditEvent{te.event},
		}
	}
	if current != nil {
		result = append(result, *current)
	}
	return result
}

// Summarize returns per-actor totals for a session map, sorted by actor.
func Summarize(sessions map[string][]models.Session) []models.ActorSummary {
	out := make([]models.ActorSummary, 0, len(sessions))
	for actor, list := range sessions {
		if len(list) == 0 {
			continue
		}
		s := models.ActorSummary{
			Actor:     actor,
			Sessions:  len(list),
			FirstSeen: list[0].StartTime,
			LastSeen:  list[len(list)-1].EndTime,
		}
		for i := range list {
			s.Events += list[i].EventCount
			s.ActiveDuration += list[i].Duration()
		}
		out = append(out, s)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Actor < out[j].Actor })
	return out
}
