// MagenSec Audit Analytics - Audit Event Pipeline for the Security Dashboard
// Copyright 2026 MagenSec
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/MagenSec/audit-analytics

package models

// Series is one named line/bar set aligned positionally with SeriesResult.Dates.
type Series struct {
	Key        string `json:"key"`
	Label      string `json:"label"`
	Data       []int  `json:"data"`
	ColorIndex int    `json:"colorIndex"`
	Color      string `json:"color"`
}

// SeriesResult is the chart-ready output of an aggregation. Dates are
// YYYY-MM-DD strings sorted ascending. Skipped counts events that could not
// be placed on the date axis because their timestamp was unreadable.
type SeriesResult struct {
	Dates   []string `json:"dates"`
	Series  []Series `json:"series"`
	Skipped int      `json:"skipped,omitempty"`
}

// Total returns the sum of all series values for the date at index i.
func (r *SeriesResult) Total(i int) int {
	total := 0
	for _, s := range r.Series {
		if i < len(s.Data) {
			total += s.Data[i]
		}
	}
	return total
}

// Totals returns the per-date sum across all series, aligned with Dates.
func (r *SeriesResult) Totals() []int {
	totals := make([]int, len(r.Dates))
	for i := range totals {
		totals[i] = r.Total(i)
	}
	return totals
}
