// MagenSec Audit Analytics - Audit Event Pipeline for the Security Dashboard
// Copyright 2026 MagenSec
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/MagenSec/audit-analytics

/*
Package source fetches audit events from the paginated audit endpoint.

	GET {base}/orgs/{orgId}/audit?pageSize=500&days=7&includeUxSummary=true&normalize=true[&pageToken=...]

	{"events": [...], "continuationToken": "...", "uxSummary": {...}}

Client performs single page requests. It paces requests with a token bucket
(golang.org/x/time/rate), retries HTTP 429 with exponential backoff honoring
Retry-After, and bounds how much of an error body it reads.

CircuitBreakerClient wraps a Client with sony/gobreaker so a failing source
is not hammered by every dashboard load and warmer tick.

FetchAll walks continuation tokens strictly sequentially, up to a page cap,
and de-duplicates events across pages: by id when present, otherwise by a
SHA-256 of the event's JSON encoding. A page error aborts the walk and is
returned to the caller. Reaching the page cap is not an error; the batch is
marked Truncated.
*/
package source
