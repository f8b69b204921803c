// MagenSec Audit Analytics - Audit Event Pipeline for the Security Dashboard
// Copyright 2026 MagenSec
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/MagenSec/audit-analytics

/*
Package main is the entry point for the audit analytics server.

The server pulls paginated audit events from the upstream event source, keeps
them in a stale-while-revalidate cache, and serves classified, filtered,
sessionized and aggregated views to the security dashboard over a JSON API.
Connected dashboards are told over WebSocket when a background refresh has
replaced the cached events of an organization they watch.

# Application Architecture

The server runs under a Suture v4 supervisor tree:

	RootSupervisor ("audit-analytics")
	├── CacheSupervisor ("cache-layer")
	│   └── Cache warmer (optional, WARMER_ENABLED=true)
	├── MessagingSupervisor ("messaging-layer")
	│   └── WebSocket Hub (cache refresh notifications)
	└── APISupervisor ("api-layer")
	    └── HTTP Server (Chi router)

Component initialization order:

 1. Configuration: Koanf v2 with environment variables and config files
 2. Logging: zerolog with JSON/console output modes
 3. Pipeline: source client, circuit breaker, paginator, cache store, manager
 4. WebSocket Hub
 5. API handler and Chi router
 6. Supervisor tree

# Configuration

Configuration is loaded via Koanf v2 with layered sources (highest priority wins):

	Priority: Environment variables > Config file > Defaults

Core environment variables:

	SOURCE_BASE_URL=https://api.example.com   # required
	CACHE_BACKEND=badger                      # memory or badger
	CACHE_PATH=/data/audit-cache
	CACHE_TTL=30m
	ANALYTICS_TIMEZONE=Europe/Berlin
	HTTP_PORT=8080
	CORS_ORIGINS=https://dashboard.example.com
	WARMER_ENABLED=true
	WARMER_ORGS=acme,globex
	LOG_LEVEL=info
	LOG_FORMAT=json

The config file is looked up at CONFIG_PATH, ./config.yaml and
/etc/audit-analytics/config.yaml.

# Signal Handling

SIGINT and SIGTERM cancel the root context. The HTTP server drains in-flight
requests, the hub closes client connections, and the pipeline waits for
background refreshes before closing the cache store.
*/
package main
