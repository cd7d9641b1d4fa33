// Picnic Realtime - Fan Vote Propagation and Live Updates
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/picnic-realtime

package models

import (
	"time"
)

// APIResponse is the standardized wrapper for every non-streaming HTTP
// endpoint. Streaming endpoints (SSE, WebSocket) write their own frames.
//
// Status field values:
//   - "success": Request completed successfully, see Data field
//   - "error": Request failed, see Error field for details
//
// Example error response:
//
//	{
//	  "status": "error",
//	  "error": {
//	    "code": "VALIDATION_ERROR",
//	    "message": "table must be one of: vote, vote_item, vote_pick, artist_vote, artist_vote_item"
//	  },
//	  "metadata": {"timestamp": "2026-08-30T12:00:00Z"}
//	}
type APIResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata contains response metadata for observability.
type Metadata struct {
	Timestamp time.Time `json:"timestamp"`
}

// APIError describes a failed request.
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// HealthStatus is the payload of the readiness endpoint.
type HealthStatus struct {
	Status      string  `json:"status"` // healthy or degraded
	FeedMode    string  `json:"feed_mode"`
	Breaker     string  `json:"breaker,omitempty"` // subscription breaker state
	Subscribers int     `json:"subscribers"`
	WSClients   int     `json:"ws_clients"`
	Version     string  `json:"version"`
	Uptime      float64 `json:"uptime_seconds"`
}
