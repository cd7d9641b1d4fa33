// Picnic Realtime - Fan Vote Propagation and Live Updates
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/picnic-realtime

//go:build nats

package main

import (
	"context"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/nats-io/nats-server/v2/server"
	natsgo "github.com/nats-io/nats.go"

	"github.com/tomtom215/picnic-realtime/internal/changefeed"
	"github.com/tomtom215/picnic-realtime/internal/config"
	"github.com/tomtom215/picnic-realtime/internal/logging"
	"github.com/tomtom215/picnic-realtime/internal/supervisor/services"
)

// FeedComponents holds the NATS-backed change feed: an optional embedded
// server, the stream-provisioning connection, and the JetStream consumer
// and publisher. Falls back to the in-memory broker when NATS_ENABLED
// is false, so the nats build still runs in the single-node mode.
type FeedComponents struct {
	broker    *changefeed.Broker
	embedded  *server.Server
	nc        *natsgo.Conn
	feed      *changefeed.NATSFeed
	publisher *changefeed.NATSPublisher
}

// initFeed initializes the change feed per configuration.
//
// NATS path:
//  1. Start the embedded JetStream server if NATS_EMBEDDED=true
//  2. Connect and provision the CHANGES stream (idempotent)
//  3. Create the durable consumer feed and the publisher
func initFeed(ctx context.Context, cfg *config.Config) (*FeedComponents, error) {
	if !cfg.NATS.Enabled {
		broker := changefeed.NewBroker(cfg.BrokerConfig())
		logging.Info().Msg("In-memory change feed initialized (NATS_ENABLED=false)")
		return &FeedComponents{broker: broker}, nil
	}

	components := &FeedComponents{}
	feedCfg := cfg.FeedConfig()

	if cfg.NATS.EmbeddedServer {
		ns, err := startEmbeddedServer(cfg)
		if err != nil {
			return nil, err
		}
		components.embedded = ns
		feedCfg.URL = ns.ClientURL()
		logging.Info().Str("url", feedCfg.URL).Msg("Embedded NATS server started")
	} else {
		logging.Info().Str("url", feedCfg.URL).Msg("Using external NATS server")
	}

	// Dedicated connection for stream provisioning. The watermill
	// subscriber and publisher manage their own connections.
	nc, err := natsgo.Connect(feedCfg.URL,
		natsgo.RetryOnFailedConnect(true),
		natsgo.MaxReconnects(feedCfg.MaxReconnects),
		natsgo.ReconnectWait(feedCfg.ReconnectWait),
	)
	if err != nil {
		components.Close()
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}
	components.nc = nc

	if err := changefeed.EnsureStream(ctx, nc, feedCfg); err != nil {
		components.Close()
		return nil, fmt.Errorf("provision stream: %w", err)
	}

	// Route watermill's logging through the application's zerolog output
	wmLogger := watermill.NewSlogLogger(logging.NewSlogLogger())

	feed, err := changefeed.NewNATSFeed(feedCfg, wmLogger)
	if err != nil {
		components.Close()
		return nil, fmt.Errorf("create NATS feed: %w", err)
	}
	components.feed = feed

	publisher, err := changefeed.NewNATSPublisher(feedCfg, wmLogger)
	if err != nil {
		components.Close()
		return nil, fmt.Errorf("create NATS publisher: %w", err)
	}
	components.publisher = publisher

	logging.Info().
		Str("stream", feedCfg.StreamName).
		Str("durable", feedCfg.DurableName).
		Msg("NATS change feed initialized")
	return components, nil
}

// startEmbeddedServer boots a self-contained JetStream instance for
// single-node deployments without an external NATS dependency.
func startEmbeddedServer(cfg *config.Config) (*server.Server, error) {
	opts := &server.Options{
		ServerName: "picnic-events",
		Host:       "127.0.0.1",
		Port:       4222,
		JetStream:  true,
		StoreDir:   cfg.NATS.StoreDir,
		Debug:      false,
		Trace:      false,
		NoLog:      false,
		MaxPayload: 1 << 20, // matches the ingest body limit
	}

	ns, err := server.NewServer(opts)
	if err != nil {
		return nil, fmt.Errorf("create embedded NATS server: %w", err)
	}
	ns.ConfigureLogger()

	go ns.Start()
	if !ns.ReadyForConnections(30 * time.Second) {
		ns.Shutdown()
		return nil, fmt.Errorf("embedded NATS server not ready within timeout")
	}
	return ns, nil
}

// Feed returns the change feed consumers subscribe to.
func (c *FeedComponents) Feed() changefeed.Feed {
	if c.broker != nil {
		return c.broker
	}
	return c.feed
}

// Publisher returns the sink for ingested change events.
func (c *FeedComponents) Publisher() changefeed.Publisher {
	if c.broker != nil {
		return c.broker
	}
	return c.publisher
}

// Runner returns the feed consume loop for supervision, or nil in the
// in-memory fallback.
func (c *FeedComponents) Runner() services.ContextRunner {
	if c.feed == nil {
		return nil
	}
	return services.RunnerFunc(c.feed.Run)
}

// Close shuts down feed components in reverse initialization order:
// publisher and consumer first, the provisioning connection, and the
// embedded server last so in-flight acks can land.
func (c *FeedComponents) Close() {
	if c.broker != nil {
		c.broker.Close()
		return
	}
	if c.publisher != nil {
		if err := c.publisher.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing NATS publisher")
		}
	}
	if c.feed != nil {
		if err := c.feed.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing NATS feed")
		}
	}
	if c.nc != nil {
		c.nc.Close()
	}
	if c.embedded != nil {
		c.embedded.Shutdown()
		c.embedded.WaitForShutdown()
	}
}
