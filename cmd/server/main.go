// Picnic Realtime - Fan Vote Propagation and Live Updates
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/picnic-realtime

// Package main is the entry point for the Picnic realtime server.
//
// The server carries database change events for live fan votes from
// ingest to connected clients:
//
//	POST /api/v1/changes ──> change feed ──> per-vote SSE streams
//	                                    └──> WebSocket firehose
//
// # Application Architecture
//
// The server initializes components in the following order:
//
//  1. Configuration: Load settings from environment variables and config files (Koanf v2)
//  2. Change feed: In-memory broker, or NATS JetStream with -tags nats
//  3. WebSocket hub and feed bridge: firehose fan-out
//  4. HTTP server: SSE streams, ingest, health probes, metrics
//  5. Supervisor tree: all of the above under suture v4 supervision
//
// # Configuration
//
// Configuration is loaded via Koanf v2 with layered sources (highest
// priority wins):
//   - Environment variables (HTTP_PORT, NATS_URL, LOG_LEVEL, ...)
//   - Config file (config.yaml, or CONFIG_PATH)
//   - Built-in defaults
//
// # Build Tags
//
//	go build ./cmd/server              # In-memory change feed
//	go build -tags nats ./cmd/server   # NATS JetStream change feed
//
// The nats build supports both an external server (NATS_URL) and an
// embedded one (NATS_EMBEDDED=true with NATS_STORE_DIR).
//
// # Signal Handling
//
// The server handles graceful shutdown on SIGINT and SIGTERM:
//   - Stops accepting new connections
//   - Drains active SSE and WebSocket connections (SHUTDOWN_TIMEOUT)
//   - Closes the change feed last
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/picnic-realtime/internal/api"
	"github.com/tomtom215/picnic-realtime/internal/changefeed"
	"github.com/tomtom215/picnic-realtime/internal/config"
	"github.com/tomtom215/picnic-realtime/internal/logging"
	"github.com/tomtom215/picnic-realtime/internal/realtime"
	"github.com/tomtom215/picnic-realtime/internal/supervisor"
	"github.com/tomtom215/picnic-realtime/internal/supervisor/services"
	ws "github.com/tomtom215/picnic-realtime/internal/websocket"
)

func main() {
	// Load configuration first to get logging settings
	cfg, err := config.LoadWithKoanf()
	if err != nil {
		// Use default logger for config errors (config not yet available)
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("environment", cfg.Server.Environment).
		Bool("nats_enabled", cfg.NATS.Enabled).
		Msg("Starting Picnic realtime server")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Change feed: in-memory broker by default, NATS with -tags nats.
	// initFeed lives in feed_init.go / feed_init_nats.go.
	feedComponents, err := initFeed(ctx, cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize change feed")
	}
	defer feedComponents.Close()

	// Bridge zerolog to slog for sutureslog compatibility
	slogLogger := logging.NewSlogLogger()

	tree, err := supervisor.NewSupervisorTree(slogLogger, supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	if runner := feedComponents.Runner(); runner != nil {
		tree.AddFeedService(services.NewRunnerService("nats-feed", runner))
		logging.Info().Msg("NATS feed consumer added to supervisor tree")
	}

	// Every subscriber goes through the circuit breaker: repeated
	// subscription failures fail fast instead of hammering a degraded feed.
	feed := changefeed.NewBreakerFeed(
		feedComponents.Feed(),
		changefeed.DefaultCircuitBreakerConfig("subscribe"),
	)

	// WebSocket firehose: hub plus the bridge that forwards every change
	// event from the feed into it.
	wsHub := ws.NewHub()
	bridge := ws.NewFeedBridge(feed, wsHub)
	tree.AddMessagingService(services.NewRunnerService("websocket-hub", services.RunnerFunc(wsHub.RunWithContext)))
	tree.AddMessagingService(services.NewRunnerService("feed-bridge", services.RunnerFunc(bridge.RunWithContext)))

	streamHandler := realtime.NewHandler(
		feed,
		realtime.WithHeartbeat(cfg.Stream.Heartbeat),
	)

	handler := api.NewHandler(feed, feedComponents.Publisher(), streamHandler, wsHub, cfg)
	chiMW := api.NewChiMiddleware(&api.ChiMiddlewareConfig{
		CORSAllowedOrigins: cfg.Security.CORSOrigins,
		CORSAllowedMethods: []string{"GET", "POST", "OPTIONS"},
		CORSAllowedHeaders: []string{"Content-Type", "Accept", "Cache-Control", "Last-Event-ID"},
		CORSMaxAge:         86400,
		RateLimitRequests:  cfg.Security.RateLimitReqs,
		RateLimitWindow:    cfg.Security.RateLimitWindow,
		RateLimitDisabled:  cfg.Security.RateLimitDisabled,
	})

	if cfg.Security.RateLimitDisabled {
		logging.Warn().Msg("Rate limiting is DISABLED (DISABLE_RATE_LIMIT=true)")
	}

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           api.NewRouter(handler, chiMW).Setup(),
		ReadHeaderTimeout: cfg.Server.Timeout,
		ReadTimeout:       cfg.Server.Timeout,
		// WriteTimeout stays zero: SSE and WebSocket connections are
		// long-lived by design and a global write deadline would sever
		// every stream at the timeout mark.
		WriteTimeout: 0,
		IdleTimeout:  60 * time.Second,
	}

	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	// Setup signal handling
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("Starting supervisor tree...")
	errCh := tree.ServeBackground(ctx)

	// Wait for supervisor to finish (either from signal or error)
	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish...")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	// Wait for the error channel to close (supervisor finished)
	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	// Report any services that failed to stop within timeout
	unstopped, _ := tree.UnstoppedServiceReport()
	if len(unstopped) > 0 {
		logging.Warn().Int("count", len(unstopped)).Msg("Services failed to stop within timeout")
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
		}
	}

	logging.Info().Msg("Server stopped gracefully")
}
