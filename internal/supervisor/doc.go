// MagenSec Audit Analytics - Audit Event Pipeline for the Security Dashboard
// Copyright 2026 MagenSec
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/MagenSec/audit-analytics

/*
Package supervisor provides process supervision for the analytics server
using suture v4.

The tree organizes long-running services into three layers for failure
isolation:

	RootSupervisor ("audit-analytics")
	├── CacheSupervisor ("cache-layer")
	│   └── WarmerService (if warmer.enabled)
	├── MessagingSupervisor ("messaging-layer")
	│   └── WebSocketHubService
	└── APISupervisor ("api-layer")
	    └── HTTPServerService

Crashed services are restarted with backoff; failure counts decay over
FailureDecay seconds and a layer that exceeds FailureThreshold waits
FailureBackoff before the next restart. Supervisor events are logged through
sutureslog, fed by logging.NewSlogLogger so they share the zerolog output.

# Usage Example

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
	    return err
	}
	tree.AddMessagingService(services.NewWebSocketHubService(hub, manager))
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))

	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
	    return err
	}
*/
package supervisor
