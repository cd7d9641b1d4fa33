// Picnic Realtime - Fan Vote Propagation and Live Updates
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/picnic-realtime

package api

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/tomtom215/picnic-realtime/internal/changefeed"
	"github.com/tomtom215/picnic-realtime/internal/config"
	"github.com/tomtom215/picnic-realtime/internal/logging"
	"github.com/tomtom215/picnic-realtime/internal/realtime"
	ws "github.com/tomtom215/picnic-realtime/internal/websocket"
)

// Version is the reported service version, overridable at link time.
var Version = "dev"

// Handler contains dependencies for API handlers.
//
// Handler methods are split across files:
//   - handlers.go: Handler struct, constructor, WebSocket upgrade (this file)
//   - handlers_health.go: Liveness and readiness probes
//   - handlers_changes.go: Change event ingest
//   - helpers.go: Response helpers
type Handler struct {
	feed      changefeed.Feed
	publisher changefeed.Publisher
	stream    *realtime.Handler
	wsHub     *ws.Hub
	config    *config.Config
	startTime time.Time
}

// NewHandler creates a new API handler.
//
// Dependencies:
//   - feed: change feed for readiness reporting and SSE subscriptions
//   - publisher: sink for ingested change events
//   - stream: SSE handler serving the per-vote realtime endpoints
//   - wsHub: WebSocket hub for the firehose endpoint (optional)
//   - cfg: application configuration
func NewHandler(feed changefeed.Feed, publisher changefeed.Publisher, stream *realtime.Handler, wsHub *ws.Hub, cfg *config.Config) *Handler {
	return &Handler{
		feed:      feed,
		publisher: publisher,
		stream:    stream,
		wsHub:     wsHub,
		config:    cfg,
		startTime: time.Now(),
	}
}

// getUpgrader creates a WebSocket upgrader with origin checking and a
// handshake timeout to bound slow clients.
func (h *Handler) getUpgrader() websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:   1024,
		WriteBufferSize:  1024,
		CheckOrigin:      h.checkWebSocketOrigin,
		HandshakeTimeout: 10 * time.Second,
	}
}

// checkWebSocketOrigin validates WebSocket connection origins.
// Browser WebSockets always send Origin; an empty header means a
// non-browser client, which bypasses CORS anyway, so it is rejected.
func (h *Handler) checkWebSocketOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		logging.Warn().Msg("websocket connection rejected: missing Origin header")
		return false
	}

	// Fail open when unconfigured (tests, development)
	if h.config == nil {
		return true
	}

	for _, allowed := range h.config.Security.CORSOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}

	logging.Warn().Str("origin", sanitizeLogValue(origin)).Msg("websocket connection rejected from unauthorized origin")
	return false
}

// WebSocket upgrades the connection and attaches the client to the
// firehose hub. Unlike the per-vote SSE endpoints, this stream carries
// every change event on the platform.
func (h *Handler) WebSocket(w http.ResponseWriter, r *http.Request) {
	if h.wsHub == nil {
		logging.Warn().Msg("websocket connection rejected: hub not initialized")
		respondError(w, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "WebSocket service unavailable", nil)
		return
	}

	upgrader := h.getUpgrader()
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Error().Err(err).Msg("websocket upgrade error")
		return
	}

	client := ws.NewClient(h.wsHub, conn)
	h.wsHub.Register <- client
	client.Start()
}
