// MagenSec Audit Analytics - Audit Event Pipeline for the Security Dashboard
// Copyright 2026 MagenSec
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/MagenSec/audit-analytics

package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/MagenSec/audit-analytics/internal/api"
	"github.com/MagenSec/audit-analytics/internal/config"
	"github.com/MagenSec/audit-analytics/internal/logging"
	"github.com/MagenSec/audit-analytics/internal/pipeline"
	"github.com/MagenSec/audit-analytics/internal/supervisor"
	"github.com/MagenSec/audit-analytics/internal/supervisor/services"
	ws "github.com/MagenSec/audit-analytics/internal/websocket"
)

func main() {
	// Load configuration first to get logging settings
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("source", cfg.Source.BaseURL).
		Str("cache_backend", cfg.Cache.Backend).
		Str("timezone", cfg.Analytics.Timezone).
		Msg("Starting audit analytics with supervisor tree")

	p, err := pipeline.New(cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize audit pipeline")
	}
	defer func() {
		if err := p.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing audit pipeline")
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	wsHub := ws.NewHub()

	handler, err := api.NewHandler(p.Manager, wsHub, cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create API handler")
	}
	handler.AddReadinessCheck("audit-source", func(context.Context) error {
		return p.SourceReady()
	})

	if len(cfg.Server.CORSOrigins) == 1 && cfg.Server.CORSOrigins[0] == "*" {
		logging.Warn().Msg("CORS is configured with wildcard origin (CORS_ORIGINS=*); set explicit origins in production")
	}
	if cfg.Server.RateLimitDisabled {
		logging.Warn().Msg("Rate limiting is DISABLED (DISABLE_RATE_LIMIT=true)")
	}

	router := api.NewRouter(handler, &cfg.Server)
	server := services.NewHTTPServer(&cfg.Server, router.SetupChi())

	tree.AddMessagingService(services.NewWebSocketHubService(wsHub, p.Manager))
	logging.Info().Msg("WebSocket hub added to supervisor tree")

	if cfg.Warmer.Enabled {
		tree.AddCacheService(services.NewWarmerService(p.Manager, &cfg.Warmer))
		logging.Info().
			Strs("orgs", cfg.Warmer.Orgs).
			Dur("interval", cfg.Warmer.Interval).
			Msg("Cache warmer added to supervisor tree")
	}

	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("Starting supervisor tree...")
	errCh := tree.ServeBackground(ctx)

	var serveErr error
	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish...")
		serveErr = <-errCh
	case serveErr = <-errCh:
	}
	if serveErr != nil && !errors.Is(serveErr, context.Canceled) {
		logging.Error().Err(serveErr).Msg("Supervisor tree error")
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	if len(unstopped) > 0 {
		logging.Warn().Int("count", len(unstopped)).Msg("Services failed to stop within timeout")
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
		}
	}

	logging.Info().Msg("Server stopped")
}
