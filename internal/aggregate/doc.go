// MagenSec Audit Analytics - Audit Event Pipeline for the Security Dashboard
// Copyright 2026 MagenSec
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/MagenSec/audit-analytics

/*
Package aggregate buckets audit events by calendar day into chart-ready series.

Two bucketing strategies exist and both are needed:

  - Sparse (GroupByDayAndType, GroupByDayCustom and the lifecycle/login
    wrappers) emits only days that have at least one event.
  - Dense (DenseTimeline) emits every calendar day of the requested range,
    with explicit zeros. A zero day is a signal in its own right, for example
    a scheduled job that did not run.

Every result is a models.SeriesResult: an ascending list of YYYY-MM-DD dates
and one series per grouping key, sorted by key. Colors come from a fixed
palette indexed by series position, so a given position always renders in
the same color.

Days are computed in the caller supplied *time.Location (nil means UTC).
Events whose timestamp cannot be parsed cannot be placed on the axis; they
are counted in SeriesResult.Skipped instead of disappearing. Events a
grouping function rejects (for example notifications in the lifecycle view)
are excluded by classification and are not counted.

All functions are pure and never modify their input.
*/
package aggregate
