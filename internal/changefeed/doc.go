// Picnic Realtime - Fan Vote Propagation and Live Updates
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/picnic-realtime

// Package changefeed defines the row-level change event model and the Feed
// abstraction the realtime stream adapters subscribe to.
//
// A ChangeEvent describes one committed row mutation in the voting schema
// (vote, vote_item, vote_pick, artist_vote, artist_vote_item). Events arrive
// from the managed database's replication feed, either directly over NATS
// JetStream (nats build tag) or via the HTTP ingest endpoint, and fan out to
// per-connection subscriptions through a Feed.
//
// Two Feed implementations exist:
//
//   - Broker: an in-process broker with an explicit subscriber registry.
//     Used in single-node deployments and throughout the tests.
//   - NATSFeed: a durable JetStream consumer over the changes.> subject
//     hierarchy, built on Watermill (requires the nats build tag).
//
// Subscriptions are connection-scoped, exclusively owned by their creator,
// and must be released with Unsubscribe. A subscription whose consumer falls
// behind has events dropped rather than blocking the publisher.
package changefeed
