// MagenSec Audit Analytics - Audit Event Pipeline for the Security Dashboard
// Copyright 2026 MagenSec
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/MagenSec/audit-analytics

package aggregate

import (
	"time"

	"github.com/MagenSec/audit-analytics/internal/models"
)

// EmptySeriesKey names the placeholder series of a timeline with no events.
const EmptySeriesKey = "Events"

// CalendarDays returns rangeDays consecutive YYYY-MM-DD dates ending with
// now's day in loc. rangeDays below 1 is treated as 1.
func CalendarDays(rangeDays int, now time.Time, loc *time.Location) []string {
	if rangeDays < 1 {
		rangeDays = 1
	}
	now = now.In(orUTC(loc))
	y, m, d := now.Date()
	last := time.Date(y, m, d, 0, 0, 0, 0, now.Location())

	dates := make([]string, rangeDays)
	for i := 0; i < rangeDays; i++ {
		dates[i] = last.AddDate(0, 0, i-(rangeDays-1)).Format(DateLayout)
	}
	return dates
}

// DenseTimeline counts events per day per TypeKey over the full calendar
// window of rangeDays days ending at now. Days without events are present
// with zero counts. Events outside the window are ignored; events with an
// unreadable timestamp are counted in Skipped.
//
// When no event falls inside the window the result still carries the full
// axis and a single all-zero series named EmptySeriesKey.
func DenseTimeline(events []models.AuditEvent, rangeDays int, now time.Time, loc *time.Location) models.SeriesResult {
	loc = orUTC(loc)
	dates := CalendarDays(rangeDays, now, loc)
	inWindow := make(map[string]struct{}, len(dates))
	for _, d := range dates {
		inWindow[d] = struct{}{}
	}

	counts := make(map[string]map[string]int)
	labels := make(map[string]string)
	skipped := 0

	for i := range events {
		ts, ok := events[i].Time()
		if !ok {
			skipped++
			continue
		}
		day := DayOf(ts, loc)
		if _, ok := inWindow[day]; !ok {
			continue
		}
		key, label, _ := ByTypeKey(&events[i])
		if counts[key] == nil {
			counts[key] = make(map[string]int)
			labels[key] = label
		}
		counts[key][day]++
	}

	if len(counts) == 0 {
		idx, color := PaletteColor(0)
		return models.SeriesResult{
			Dates: dates,
			Series: []models.Series{{
				Key:        EmptySeriesKey,
				Label:      EmptySeriesKey,
				Data:       make([]int, len(dates)),
				ColorIndex: idx,
				Color:      color,
			}},
			Skipped: skipped,
		}
	}

	return models.SeriesResult{
		Dates:   dates,
		Series:  buildSeries(dates, counts, labels),
		Skipped: skipped,
	}
}
