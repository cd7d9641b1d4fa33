// Picnic Realtime - Fan Vote Propagation and Live Updates
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/picnic-realtime

// Package api provides HTTP routing using the Chi router.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/picnic-realtime/internal/middleware"
)

// Router wires handlers and middleware into the HTTP surface.
type Router struct {
	handler       *Handler
	chiMiddleware *ChiMiddleware
}

// NewRouter creates a Router from a handler and middleware factory.
func NewRouter(handler *Handler, chiMW *ChiMiddleware) *Router {
	if chiMW == nil {
		chiMW = NewChiMiddleware(nil)
	}
	return &Router{handler: handler, chiMiddleware: chiMW}
}

// Setup configures all HTTP routes.
func (router *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// ========================
	// Global Middleware Stack
	// ========================
	r.Use(middleware.RequestID)         // X-Request-ID plus logging context
	r.Use(chimiddleware.RealIP)         // Extract real IP from X-Forwarded-For
	r.Use(chimiddleware.Recoverer)      // Recover from panics
	r.Use(router.chiMiddleware.CORS())  // Global so OPTIONS preflight works everywhere
	r.Use(middleware.PrometheusMetrics) // Request counts and latency by route pattern

	// ========================
	// Realtime Stream Endpoints
	// ========================
	// One SSE stream per vote id. The connect itself is rate limited; an
	// established stream is a single long-lived request.
	r.Route("/realtime", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimit())
		r.Get("/vote/{voteId}", router.handler.stream.VoteStream)
		r.Get("/artist-vote/{voteId}", router.handler.stream.ArtistVoteStream)
	})

	// ========================
	// Health Endpoints
	// ========================
	// Permissive rate limiting so orchestrator probes are never throttled.
	r.Route("/health", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimitHealth())
		r.Get("/live", router.handler.HealthLive)
		r.Get("/ready", router.handler.HealthReady)
	})

	// ========================
	// Ingest and Firehose
	// ========================
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimit())
		r.Post("/changes", router.handler.ChangeIngest)
		r.Get("/ws", router.handler.WebSocket)
	})

	// Prometheus scrape endpoint
	r.Handle("/metrics", promhttp.Handler())

	return r
}
