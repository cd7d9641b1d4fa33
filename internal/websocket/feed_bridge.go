// Picnic Realtime - Fan Vote Propagation and Live Updates
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/picnic-realtime

package websocket

import (
	"context"
	"fmt"

	"github.com/tomtom215/picnic-realtime/internal/changefeed"
	"github.com/tomtom215/picnic-realtime/internal/logging"
	"github.com/tomtom215/picnic-realtime/internal/realtime"
)

// FeedBridge forwards every change feed event to the WebSocket hub. It is
// the firehose counterpart of the per-vote SSE streams: dashboards and
// moderation tooling connect once and see all tables.
type FeedBridge struct {
	feed changefeed.Feed
	hub  *Hub
}

// NewFeedBridge creates a bridge between the change feed and the hub.
func NewFeedBridge(feed changefeed.Feed, hub *Hub) *FeedBridge {
	return &FeedBridge{feed: feed, hub: hub}
}

// RunWithContext subscribes to all change tables and forwards events until
// the context is canceled. Designed for use with suture supervision; a
// subscription failure returns the error so the supervisor can restart the
// bridge with backoff.
func (b *FeedBridge) RunWithContext(ctx context.Context) error {
	filters := make([]changefeed.Filter, 0, len(changefeed.Tables))
	for _, table := range changefeed.Tables {
		filters = append(filters, changefeed.Filter{Table: table})
	}

	sub, err := b.feed.Subscribe(ctx, filters...)
	if err != nil {
		return fmt.Errorf("feed bridge subscribe: %w", err)
	}
	defer sub.Unsubscribe()

	logging.Info().Str("component", "feed-bridge").Msg("feed bridge started")

	for {
		select {
		case <-ctx.Done():
			logging.Info().
				Str("component", "feed-bridge").
				Str("reason", string(getShutdownReason(ctx))).
				Msg("feed bridge stopped")
			return ctx.Err()

		case event, ok := <-sub.Events():
			if !ok {
				// Feed closed underneath us; let the supervisor decide
				// whether to restart.
				return fmt.Errorf("feed bridge: subscription closed")
			}
			b.hub.BroadcastChange(realtime.NewEnvelope(event))
		}
	}
}
