// MagenSec Audit Analytics - Audit Event Pipeline for the Security Dashboard
// Copyright 2026 MagenSec
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/MagenSec/audit-analytics

package aggregate

import (
	"sort"
	"time"

	"github.com/MagenSec/audit-analytics/internal/classify"
	"github.com/MagenSec/audit-analytics/internal/models"
)

// DateLayout is the format of SeriesResult.Dates entries.
const DateLayout = "2006-01-02"

// palette is cycled by series index.
var palette = [...]string{
	"#206bc4",
	"#2fb344",
	"#d63939",
	"#f59f00",
	"#ae3ec9",
	"#17a2b8",
	"#f76707",
	"#6574cd",
}

// PaletteColor returns the palette color for a series index.
func PaletteColor(idx int) (int, string) {
	if idx < 0 {
		idx = -idx
	}
	i := idx % len(palette)
	return i, palette[i]
}

// KeyFunc maps an event to its grouping key and display label. Returning
// ok == false excludes the event from the aggregation.
type KeyFunc func(e *models.AuditEvent) (key, label string, ok bool)

// ByTypeKey groups by TypeKey, labelled with TypeLabel.
func ByTypeKey(e *models.AuditEvent) (string, string, bool) {
	return classify.TypeKey(e), classify.TypeLabel(e), true
}

// DayOf returns the YYYY-MM-DD calendar day of t in loc.
func DayOf(t time.Time, loc *time.Location) string {
	return t.In(orUTC(loc)).Format(DateLayout)
}

func orUTC(loc *time.Location) *time.Location {
	if loc == nil {
		return time.UTC
	}
	return loc
}

// GroupByDayAndType is the default sparse aggregation, keyed by TypeKey.
func GroupByDayAndType(events []models.AuditEvent, loc *time.Location) models.SeriesResult {
	return GroupByDayCustom(events, ByTypeKey, loc)
}

// GroupByDayCustom buckets events by day and by the key returned from keyFn.
// Only days with at least one counted event appear in Dates.
func GroupByDayCustom(events []models.AuditEvent, keyFn KeyFunc, loc *time.Location) models.SeriesResult {
	loc = orUTC(loc)
	counts := make(map[string]map[string]int) // key -> day -> count
	labels := make(map[string]string)
	days := make(map[string]struct{})
	skipped := 0

	for i := range events {
		key, label, ok := keyFn(&events[i])
		if !ok {
			continue
		}
		ts, ok := events[i].Time()
		if !ok {
			skipped++
			continue
		}
		day := DayOf(ts, loc)
		days[day] = struct{}{}
		if counts[key] == nil {
			counts[key] = make(map[string]int)
			labels[key] = label
		}
		counts[key][day]++
	}

	dates := make([]string, 0, len(days))
	for d := range days {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	return models.SeriesResult{
		Dates:   dates,
		Series:  buildSeries(dates, counts, labels),
		Skipped: skipped,
	}
}

// buildSeries lays counts out along dates, one series per key sorted by key.
func buildSeries(dates []string, counts map[string]map[string]int, labels map[string]string) []models.Series {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	series := make([]models.Series, 0, len(keys))
	for idx, key := range keys {
		data := make([]int, len(dates))
		for i, d := range dates {
			data[i] = counts[key][d]
		}
		colorIdx, color := PaletteColor(idx)
		series = append(series, models.Series{
			Key:        key,
			Label:      labels[key],
			Data:       data,
			ColorIndex: colorIdx,
			Color:      color,
		})
	}
	return series
}
