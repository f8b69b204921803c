// MagenSec Audit Analytics - Audit Event Pipeline for the Security Dashboard
// Copyright 2026 MagenSec
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/MagenSec/audit-analytics

/*
Package services provides suture.Service wrappers for the audit analytics
components.

Each wrapper translates a component's lifecycle into suture's context-aware
Serve pattern and identifies itself via fmt.Stringer for supervisor logs.

# Available Services

HTTP Server (HTTPServerService):
  - Wraps *http.Server with graceful shutdown
  - Converts ListenAndServe pattern to Serve
  - Configurable shutdown timeout for draining connections

WebSocket Hub (WebSocketHubService):
  - Runs websocket.Hub until the context is canceled
  - Forwards cache manager updates to the hub while it runs, so refresh
    notifications stop with the hub and resume after a restart

Cache Warmer (WarmerService):
  - Periodically loads the configured orgs through the cache manager
  - Bounded fan-out with errgroup; per-org failures are logged, never fatal

# Usage Example

	hub := websocket.NewHub()
	tree.AddMessagingService(services.NewWebSocketHubService(hub, manager))
	tree.AddCacheService(services.NewWarmerService(manager, &cfg.Warmer))
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))
*/
package services
