// Picnic Realtime - Fan Vote Propagation and Live Updates
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/picnic-realtime

// Package realtime serves the per-vote SSE endpoints.
//
// Each GET /realtime/vote/{voteId} or /realtime/artist-vote/{voteId}
// connection opens one filtered change-feed subscription scoped to that
// vote, normalizes every matching row change to camelCase, and writes it
// as a `data: <json>` frame. The subscription lives exactly as long as
// the HTTP request: client abort tears it down, and a feed error ends the
// response so the client's reconnect logic takes over. The server keeps
// no retry state per connection.
package realtime
