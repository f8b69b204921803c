// MagenSec Audit Analytics - Audit Event Pipeline for the Security Dashboard
// Copyright 2026 MagenSec
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/MagenSec/audit-analytics

/*
Package models defines the data structures shared by the audit analytics pipeline.

Key Components:

  - AuditEvent: one immutable audit/telemetry record as returned by the event source
  - ClassifiedEvent: an AuditEvent plus its derived classification (type key, label, icon, color)
  - Session: a contiguous run of one actor's events
  - Series / SeriesResult: chart-ready, date-aligned aggregates
  - EventPage / EventBatch: one source page and the accumulated result of a paginated fetch
  - Filters: the dashboard filter bar state

All types are plain data. Nothing in this package performs I/O, and no pipeline
stage mutates an AuditEvent once it has been decoded.
*/
package models
