// Picnic Realtime - Fan Vote Propagation and Live Updates
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/picnic-realtime

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/picnic-realtime/internal/changefeed"
	"github.com/tomtom215/picnic-realtime/internal/models"
)

// HealthLive handles liveness probe requests (Kubernetes-style).
// Returns 200 OK if the process is alive, regardless of dependencies.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, http.StatusOK, map[string]interface{}{
		"alive":  true,
		"uptime": time.Since(h.startTime).Seconds(),
	})
}

// HealthReady handles readiness probe requests (Kubernetes-style).
// Returns 200 OK when the change feed can accept subscriptions; 503 while
// the feed is closed or absent so load balancers stop routing stream
// connects at a dead instance.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	status := "healthy"
	httpStatus := http.StatusOK

	if h.feed == nil {
		status = "degraded"
		httpStatus = http.StatusServiceUnavailable
	}

	// The feed arrives wrapped in the subscription circuit breaker; look
	// through it for mode detection and surface its state.
	feed := h.feed
	breakerState := ""
	if bf, ok := feed.(*changefeed.BreakerFeed); ok {
		breakerState = bf.State().String()
		feed = bf.Inner()
	}

	feedMode := "memory"
	subscribers := 0
	if broker, ok := feed.(*changefeed.Broker); ok {
		subscribers = broker.SubscriberCount()
	} else if feed != nil {
		feedMode = "nats"
	}

	wsClients := 0
	if h.wsHub != nil {
		wsClients = h.wsHub.GetClientCount()
	}

	health := models.HealthStatus{
		Status:      status,
		FeedMode:    feedMode,
		Breaker:     breakerState,
		Subscribers: subscribers,
		WSClients:   wsClients,
		Version:     Version,
		Uptime:      time.Since(h.startTime).Seconds(),
	}

	respondJSON(w, httpStatus, &models.APIResponse{
		Status: statusWord(httpStatus),
		Data:   health,
		Metadata: models.Metadata{
			Timestamp: time.Now(),
		},
	})
}

func statusWord(httpStatus int) string {
	if httpStatus == http.StatusOK {
		return "success"
	}
	return "error"
}
