// MagenSec Audit Analytics - Audit Event Pipeline for the Security Dashboard
// Copyright 2026 MagenSec
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/MagenSec/audit-analytics

// Command auditctl queries the audit pipeline from a terminal. It shares the
// server's configuration, cache and aggregators and prints the same JSON
// payloads the API returns.
//
//	auditctl --org acme --days 30 events --type DeviceBlocked
//	auditctl --org acme sessions
//	auditctl --org acme series lifecycle --detailed
//	auditctl --org acme --cached-only types
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := newRootCmd(defaultOptions(os.Stdout)).ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
