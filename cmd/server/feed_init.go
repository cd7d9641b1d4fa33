// Picnic Realtime - Fan Vote Propagation and Live Updates
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/picnic-realtime

//go:build !nats

package main

import (
	"context"

	"github.com/tomtom215/picnic-realtime/internal/changefeed"
	"github.com/tomtom215/picnic-realtime/internal/config"
	"github.com/tomtom215/picnic-realtime/internal/logging"
	"github.com/tomtom215/picnic-realtime/internal/supervisor/services"
)

// FeedComponents holds the in-memory change feed. The broker serves as
// both the feed and the publisher: events ingested over HTTP fan out
// directly to local subscriptions.
type FeedComponents struct {
	broker *changefeed.Broker
}

// initFeed creates the in-memory broker. NATS settings are ignored in
// this build; enabling them logs a warning so a misconfigured deployment
// is visible.
func initFeed(_ context.Context, cfg *config.Config) (*FeedComponents, error) {
	if cfg.NATS.Enabled {
		logging.Warn().Msg("NATS_ENABLED=true but NATS support not compiled (build with -tags nats)")
	}

	broker := changefeed.NewBroker(cfg.BrokerConfig())
	logging.Info().Msg("In-memory change feed initialized")
	return &FeedComponents{broker: broker}, nil
}

// Feed returns the change feed consumers subscribe to.
func (c *FeedComponents) Feed() changefeed.Feed {
	return c.broker
}

// Publisher returns the sink for ingested change events.
func (c *FeedComponents) Publisher() changefeed.Publisher {
	return c.broker
}

// Runner returns nil: the in-memory broker has no run loop to supervise.
func (c *FeedComponents) Runner() services.ContextRunner {
	return nil
}

// Close shuts down the broker, closing all subscriptions.
func (c *FeedComponents) Close() {
	c.broker.Close()
}
