// Picnic Realtime - Fan Vote Propagation and Live Updates
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/picnic-realtime

/*
Package middleware provides chi-compatible HTTP middleware for the API
layer.

  - RequestID: assigns or propagates X-Request-ID and seeds the logging
    context with request and correlation IDs.
  - PrometheusMetrics: records request counts, latency histograms, and an
    in-flight gauge, labeling endpoints by chi route pattern to keep
    cardinality bounded.

Both middlewares preserve http.Flusher and http.Hijacker on the wrapped
ResponseWriter so SSE streams and WebSocket upgrades pass through
unimpeded. CORS and rate limiting use go-chi/cors and go-chi/httprate
directly from the router and are not reimplemented here.
*/
package middleware
