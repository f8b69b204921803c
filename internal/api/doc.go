// MagenSec Audit Analytics - Audit Event Pipeline for the Security Dashboard
// Copyright 2026 MagenSec
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/MagenSec/audit-analytics

/*
Package api exposes the audit analytics pipeline over HTTP.

Every data endpoint is scoped to one organization and one day range. A request
loads the org's event batch through the cache manager (serving cached data
immediately and refreshing it in the background), then runs the pure
classification, filtering, session and aggregation steps over the batch.

Routes:

	GET /api/v1/orgs/{orgId}/events             classified and filtered events
	GET /api/v1/orgs/{orgId}/types              type filter options with counts
	GET /api/v1/orgs/{orgId}/sessions           per-actor activity sessions
	GET /api/v1/orgs/{orgId}/series/{view}      daily | timeline | lifecycle | logins
	GET /api/v1/health/live                     liveness check
	GET /api/v1/health/ready                    readiness check
	GET /api/v1/ws                              refresh notifications (WebSocket)
	GET /metrics                                Prometheus metrics

Common query parameters:

	days       day range requested from the event source (1-365)
	type       type key filter ("all" or empty disables it)
	search     case-insensitive substring over description, actor and type
	dateFrom   YYYY-MM-DD or RFC3339 lower bound (inclusive)
	dateTo     YYYY-MM-DD or RFC3339 upper bound (inclusive, end of day)

Response format:

All responses use the standard envelope:

	{
	  "success": true,
	  "data": { ... },
	  "meta": {
	    "request_id": "...",
	    "timestamp": "...",
	    "duration_ms": 3,
	    "cache": {"from_cache": true, "stale": false, "refreshing": true, "fetched_at": "..."}
	  }
	}

Errors carry {"success": false, "error": {"code": "...", "message": "..."}}.
A failed blocking fetch from the event source maps to 502
EXTERNAL_SERVICE_FAILED; invalid query parameters map to 400
VALIDATION_ERROR.
*/
package api
