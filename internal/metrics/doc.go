// Picnic Realtime - Fan Vote Propagation and Live Updates
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/picnic-realtime

/*
Package metrics provides Prometheus metrics collection and export for observability.

This package instruments the vote propagation path using the Prometheus client
library, exposing metrics for monitoring throughput, delivery, and system health.

# Overview

The package provides metrics for:
  - Change feed throughput, drops, and subscription errors
  - SSE stream counts and frame delivery per channel
  - Field normalizer key collisions
  - HTTP request latency and throughput
  - WebSocket firehose connection counts
  - Circuit breaker state transitions

# Metrics Endpoint

Metrics are exposed at the /metrics endpoint in Prometheus text format:

	curl http://localhost:8090/metrics

# Key Metrics

Change Feed:
  - feed_events_total: Published change events (counter)
    Labels: table, operation
  - feed_dropped_events_total: Events dropped on slow subscribers (counter)
    Labels: table
  - feed_subscribers: Registered subscriptions (gauge)

SSE Streams:
  - sse_active_streams: Open streams (gauge)
    Labels: channel (vote, artist_vote)
  - sse_frames_sent_total: Data frames written (counter)
    Labels: channel, table

HTTP:
  - api_requests_total: Total requests (counter)
    Labels: method, endpoint, status_code
  - api_request_duration_seconds: Request latency (histogram)
    Labels: method, endpoint

# Usage Example

Recording an event on the publish path:

	metrics.RecordFeedEvent(string(event.Table), string(event.Operation))

Tracking a stream lifecycle:

	metrics.TrackActiveStream("vote", true)
	defer metrics.TrackActiveStream("vote", false)

# Cardinality Management

To prevent high cardinality issues:

  - Endpoint labels use the chi route pattern, never the raw path
  - Table and operation labels come from closed enums
  - Vote identifiers never appear as label values

# Thread Safety

All metric recording functions are thread-safe and designed for concurrent use
from multiple goroutines. The Prometheus client library handles synchronization
internally.

# See Also

  - internal/middleware: HTTP middleware with metrics integration
  - internal/changefeed: Feed publish and drop metrics recording
  - https://prometheus.io/docs/practices/naming/: Metric naming conventions
*/
package metrics
