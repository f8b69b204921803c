// MagenSec Audit Analytics - Audit Event Pipeline for the Security Dashboard
// Copyright 2026 MagenSec
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/MagenSec/audit-analytics

/*
Package logging wraps a process-wide zerolog logger.

The logger is usable before Init is called (JSON to stderr at info level).
cmd/server and cmd/auditctl call Init with the logging section of the
configuration once the config has been loaded.

	logging.Info().Str("org_id", orgID).Int("events", n).Msg("audit batch fetched")
	logging.Ctx(ctx).Warn().Err(err).Msg("background refresh failed")

Request-scoped fields (request_id, correlation_id) travel in the context and
are attached by Ctx. Components take a child logger from WithComponent.

NewSlogLogger adapts the logger to log/slog for libraries that need an
*slog.Logger, such as sutureslog in the supervisor tree.

Always finish an event with Msg or Send, otherwise nothing is written.
*/
package logging
