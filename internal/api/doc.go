// Picnic Realtime - Fan Vote Propagation and Live Updates
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/picnic-realtime

/*
Package api assembles the HTTP surface of the realtime service.

# Endpoints

Realtime streams (SSE, served by internal/realtime):

	GET /realtime/vote/{voteId}        vote, vote_item, vote_pick changes
	GET /realtime/artist-vote/{voteId} artist_vote, artist_vote_item changes

Ingest and firehose:

	POST /api/v1/changes  change event ingest (validated, closed table set)
	GET  /api/v1/ws       WebSocket firehose of all change events

Operations:

	GET /health/live   liveness probe
	GET /health/ready  readiness probe (503 while the feed is unavailable)
	GET /metrics       Prometheus scrape endpoint

# Middleware

The global stack applies request IDs, real IP extraction, panic recovery,
CORS (go-chi/cors), and Prometheus instrumentation. Rate limiting
(go-chi/httprate) is per-route-group: standard limits on streams and
ingest, permissive limits on health probes.

# Response Format

Non-streaming endpoints wrap payloads in models.APIResponse. The SSE
endpoints write their own frames and error bodies; see internal/realtime.
*/
package api
