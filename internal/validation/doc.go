// MagenSec Audit Analytics - Audit Event Pipeline for the Security Dashboard
// Copyright 2026 MagenSec
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/MagenSec/audit-analytics

// Package validation validates API query parameters using
// go-playground/validator v10.
//
// A single validator instance is created lazily and shared; it caches struct
// metadata, so it is safe and cheap to call from every request. Two custom
// tags are registered:
//
//   - orgid: 1-128 characters of [A-Za-z0-9._-], starting alphanumeric.
//     Org IDs are placed in the source URL path and the cache key.
//   - filterdate: YYYY-MM-DD or RFC 3339, the formats the filter engine
//     accepts for dateFrom/dateTo.
//
// Field names in error messages come from the `query` struct tag, so a
// failure reads "days must be at most 365" rather than naming the Go field.
//
// # Usage
//
//	q := validation.EventsQuery{...}
//	if verr := validation.ValidateStruct(&q); verr != nil {
//	    apiErr := verr.ToAPIError()
//	    respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message)
//	    return
//	}
package validation
