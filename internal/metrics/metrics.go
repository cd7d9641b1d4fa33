// Picnic Realtime - Fan Vote Propagation and Live Updates
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/picnic-realtime

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus Metrics Integration for Production Observability
// This package provides instrumentation for:
// - Change feed throughput and drops
// - SSE stream delivery per channel
// - Field normalization anomalies
// - API endpoint latency and throughput
// - WebSocket firehose connections

var (
	// Change Feed Metrics
	FeedEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_events_total",
			Help: "Total number of change events published to the feed",
		},
		[]string{"table", "operation"},
	)

	FeedDroppedEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_dropped_events_total",
			Help: "Total number of events dropped due to slow subscribers",
		},
		[]string{"table"},
	)

	FeedSubscriptionErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_subscription_errors_total",
			Help: "Total number of failed subscription attempts",
		},
		[]string{"status"}, // "rejected", "closed", "breaker_open"
	)

	FeedSubscribers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "feed_subscribers",
			Help: "Current number of registered feed subscriptions",
		},
	)

	FeedPublishDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "feed_publish_duration_seconds",
			Help:    "Duration of a single event fan-out in seconds",
			Buckets: []float64{0.00005, 0.0001, 0.00025, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.05},
		},
	)

	// SSE Stream Metrics
	ActiveStreams = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "sse_active_streams",
			Help: "Current number of open SSE streams",
		},
		[]string{"channel"}, // "vote", "artist_vote"
	)

	StreamFramesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sse_frames_sent_total",
			Help: "Total number of SSE data frames written to clients",
		},
		[]string{"channel", "table"},
	)

	StreamWriteErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sse_write_errors_total",
			Help: "Total number of failed SSE frame writes",
		},
		[]string{"channel"},
	)

	// Normalizer Metrics
	NormalizerCollisions = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "normalizer_key_collisions_total",
			Help: "Total number of snake_case keys that collided after camelCase conversion",
		},
	)

	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}, // Optimized for API latency
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_rate_limit_hits_total",
			Help: "Total number of rate limit rejections",
		},
		[]string{"endpoint"},
	)

	IngestRejectedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ingest_rejected_total",
			Help: "Total number of change events rejected at the ingest endpoint",
		},
		[]string{"reason"}, // "decode", "validation", "table", "operation"
	)

	// WebSocket Metrics
	WSConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "websocket_connections",
			Help: "Current number of active WebSocket connections",
		},
	)

	WSMessagesSent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "websocket_messages_sent_total",
			Help: "Total number of WebSocket messages sent",
		},
	)

	WSErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "websocket_errors_total",
			Help: "Total number of WebSocket errors",
		},
		[]string{"error_type"},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// NATS Metrics
	NATSMessagesPublished = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "nats_messages_published_total",
			Help: "Total number of messages published to NATS",
		},
	)

	NATSMessagesConsumed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "nats_messages_consumed_total",
			Help: "Total number of messages consumed from NATS",
		},
	)

	NATSMessagesParseFailed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "nats_messages_parse_failed_total",
			Help: "Total number of messages that failed to parse",
		},
	)

	// System Metrics
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "app_info",
			Help: "Application version and build information",
		},
		[]string{"version", "go_version"},
	)

	AppUptime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "app_uptime_seconds",
			Help: "Application uptime in seconds",
		},
	)
)

// RecordFeedEvent records one published change event
func RecordFeedEvent(table, operation string) {
	FeedEventsTotal.WithLabelValues(table, operation).Inc()
}

// RecordFeedDrop records an event dropped on a saturated subscription
func RecordFeedDrop(table string) {
	FeedDroppedEvents.WithLabelValues(table).Inc()
}

// RecordSubscriptionError records a failed subscription attempt
func RecordSubscriptionError(status string) {
	FeedSubscriptionErrors.WithLabelValues(status).Inc()
}

// RecordStreamFrame records one SSE frame delivered to a client
func RecordStreamFrame(channel, table string) {
	StreamFramesTotal.WithLabelValues(channel, table).Inc()
}

// TrackActiveStream tracks open SSE streams per channel
func TrackActiveStream(channel string, inc bool) {
	if inc {
		ActiveStreams.WithLabelValues(channel).Inc()
	} else {
		ActiveStreams.WithLabelValues(channel).Dec()
	}
}

// RecordNormalizerCollision records a camelCase key collision
func RecordNormalizerCollision() {
	NormalizerCollisions.Inc()
}

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordIngestRejection records a rejected ingest payload
func RecordIngestRejection(reason string) {
	IngestRejectedTotal.WithLabelValues(reason).Inc()
}

// RecordNATSPublish records a message being published to NATS
func RecordNATSPublish() {
	NATSMessagesPublished.Inc()
}

// RecordNATSConsume records a message being consumed from NATS
func RecordNATSConsume() {
	NATSMessagesConsumed.Inc()
}

// RecordNATSParseFailed records a message that failed to parse
func RecordNATSParseFailed() {
	NATSMessagesParseFailed.Inc()
}
