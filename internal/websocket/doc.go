// MagenSec Audit Analytics - Audit Event Pipeline for the Security Dashboard
// Copyright 2026 MagenSec
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/MagenSec/audit-analytics

/*
Package websocket pushes cache refresh notifications to dashboard clients.

When the cache manager settles a fetch, the hub broadcasts one of:

  - audit_refreshed: a fresh batch replaced the cached entry. Clients showing
    that org and range re-request their view without a loading flash.
  - audit_refresh_settled: a background refresh failed. The stale data stays
    on screen; clients only clear their "refreshing" indicator.

Clients may narrow the stream to specific orgs by sending

	{"type": "subscribe", "data": {"orgIds": ["org-1", "org-2"]}}

A client with no subscription receives every org. A "ping" message is
answered with "pong".

Architecture:

	cache.Manager ──Update──▶ Hub.NotifyCacheUpdate ──▶ broadcast channel
	                                                        │
	                                   ┌────────────────────┼────────────┐
	                                Client1              Client2      Client3

Each client runs a readPump (subscriptions, pings, read deadline) and a
writePump (queued messages, keepalive pings). A client whose send buffer is
full is dropped rather than allowed to stall the hub.

The hub runs under the supervisor via RunWithContext; cancelling the context
closes every client.
*/
package websocket
