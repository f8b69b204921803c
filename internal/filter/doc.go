// MagenSec Audit Analytics - Audit Event Pipeline for the Security Dashboard
// Copyright 2026 MagenSec
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/MagenSec/audit-analytics

/*
Package filter narrows audit event lists the way the dashboard filter bar does.

Filters are combined with AND and are order independent. Apply never reorders
or mutates its input; with no active filter it returns the input unchanged.

Date bounds accept either a calendar date (YYYY-MM-DD, interpreted in the
caller's location) or an RFC 3339 instant. The upper bound is widened to the
last millisecond of its day so that dateFrom == dateTo selects a whole day.
*/
package filter
