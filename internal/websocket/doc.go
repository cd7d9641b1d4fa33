// Picnic Realtime - Fan Vote Propagation and Live Updates
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/picnic-realtime

/*
Package websocket provides a firehose transport for change events over
WebSocket connections.

Where the SSE endpoints in internal/realtime serve one vote per stream,
this package serves every change event to every connected client. It is
intended for operator dashboards and moderation tooling that watch the
whole platform rather than a single vote.

# Components

  - Hub: maintains the set of active clients and broadcasts messages in a
    deterministic order. Runs under suture supervision via RunWithContext.
  - Client: one per WebSocket connection; pumps messages between the
    connection and the hub with ping/pong keepalive and write deadlines.
  - FeedBridge: subscribes to all change tables on a changefeed.Feed and
    forwards each event to the hub as a realtime.Envelope.

# Message Shape

Change messages carry the source table name as the type and the same
camelCased envelope the SSE endpoints emit:

	{"type": "vote_item", "data": {"type": "vote_item", "new": {...}, "old": null}}

Clients may send {"type": "ping"} and receive {"type": "pong"}; all other
client messages are ignored.

# Backpressure

Each client has a bounded send buffer. A client that cannot keep up is
disconnected rather than allowed to stall the broadcast loop, mirroring
the drop semantics of the change feed's per-subscriber buffers.
*/
package websocket
