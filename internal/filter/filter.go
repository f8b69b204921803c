// MagenSec Audit Analytics - Audit Event Pipeline for the Security Dashboard
// Copyright 2026 MagenSec
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/MagenSec/audit-analytics

package filter

import (
	"sort"
	"strings"
	"time"

	"github.com/MagenSec/audit-analytics/internal/classify"
	"github.com/MagenSec/audit-analytics/internal/models"
)

// AllTypes is the eventType filter value that matches every event.
const AllTypes = "all"

const dateLayout = "2006-01-02"

// compiled is a Filters value with its bounds parsed once.
type compiled struct {
	eventType string
	search    string
	from      time.Time
	to        time.Time
	hasFrom   bool
	hasTo     bool
}

func compile(f models.Filters, loc *time.Location) compiled {
	if loc == nil {
		loc = time.UTC
	}
	c := compiled{
		eventType: strings.TrimSpace(f.EventType),
		search:    strings.ToLower(strings.TrimSpace(f.Search)),
	}
	if strings.EqualFold(c.eventType, AllTypes) {
		c.eventType = ""
	}
	c.from, c.hasFrom = parseBound(f.DateFrom, loc, false)
	c.to, c.hasTo = parseBound(f.DateTo, loc, true)
	return c
}

func (c *compiled) active() bool {
	return c.eventType != "" || c.search != "" || c.hasFrom || c.hasTo
}

// parseBound parses a filter date. Unparseable values yield (zero, false) and
// do not constrain the result.
func parseBound(s string, loc *time.Location, endOfDay bool) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if d, err := time.ParseInLocation(dateLayout, s, loc); err == nil {
		if endOfDay {
			return EndOfDay(d), true
		}
		return d, true
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		if endOfDay {
			return EndOfDay(t.In(loc)), true
		}
		return t, true
	}
	return time.Time{}, false
}

// EndOfDay returns 23:59:59.999 on t's calendar day in t's location.
func EndOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, int(999*time.Millisecond), t.Location())
}

func (c *compiled) match(e *models.AuditEvent) bool {
	if c.eventType != "" && !MatchesType(e, c.eventType) {
		return false
	}
	if c.search != "" && !matchesSearch(e, c.search) {
		return false
	}
	if c.hasFrom || c.hasTo {
		ts, ok := e.Time()
		if !ok {
			return false
		}
		if c.hasFrom && ts.Before(c.from) {
			return false
		}
		if c.hasTo && ts.After(c.to) {
			return false
		}
	}
	return true
}

// MatchesType reports whether the event's TypeKey or base type equals want.
func MatchesType(e *models.AuditEvent, want string) bool {
	return classify.TypeKey(e) == want || classify.BaseType(e) == want
}

// matchesSearch does a case-insensitive substring match over the searchable
// fields. needle must already be lowercased.
func matchesSearch(e *models.AuditEvent, needle string) bool {
	for _, field := range []string{e.Description, e.PerformedBy, e.TargetID, e.EventType, e.SubType} {
		if field != "" && strings.Contains(strings.ToLower(field), needle) {
			return true
		}
	}
	return false
}

// Apply returns the events matching every active filter, in input order.
// loc is used for calendar-date bounds; nil means UTC.
func Apply(events []models.AuditEvent, f models.Filters, loc *time.Location) []models.AuditEvent {
	c := compile(f, loc)
	if !c.active() {
		return events
	}

	out := make([]models.AuditEvent, 0, len(events))
	for i := range events {
		if c.match(&events[i]) {
			out = append(out, events[i])
		}
	}
	return out
}

// TypeOptions returns the distinct TypeKeys present in events, sorted by key,
// with display labels and occurrence counts.
func TypeOptions(events []models.AuditEvent) []models.TypeOption {
	index := make(map[string]int)
	var opts []models.TypeOption
	for i := range events {
		key := classify.TypeKey(&events[i])
		if j, ok := index[key]; ok {
			opts[j].Count++
			continue
		}
		index[key] = len(opts)
		opts = append(opts, models.TypeOption{
			Key:   key,
			Label: classify.TypeLabel(&events[i]),
			Count: 1,
		})
	}

	sort.Slice(opts, func(i, j int) bool { return opts[i].Key < opts[j].Key })
	return opts
}
