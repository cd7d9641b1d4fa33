// Picnic Realtime - Fan Vote Propagation and Live Updates
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/picnic-realtime

package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"

	"github.com/tomtom215/picnic-realtime/internal/changefeed"
	"github.com/tomtom215/picnic-realtime/internal/config"
	"github.com/tomtom215/picnic-realtime/internal/realtime"
	ws "github.com/tomtom215/picnic-realtime/internal/websocket"
)

func TestCheckWebSocketOrigin(t *testing.T) {
	cfg := &config.Config{}
	cfg.Security.CORSOrigins = []string{"https://picnic.example"}
	handler := NewHandler(nil, nil, nil, nil, cfg)

	tests := []struct {
		name   string
		origin string
		want   bool
	}{
		{"allowed origin", "https://picnic.example", true},
		{"unknown origin", "https://evil.example", false},
		{"missing origin", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/ws", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			if got := handler.checkWebSocketOrigin(req); got != tt.want {
				t.Errorf("checkWebSocketOrigin(%q) = %v, want %v", tt.origin, got, tt.want)
			}
		})
	}

	t.Run("wildcard allows any origin", func(t *testing.T) {
		wildcard := &config.Config{}
		wildcard.Security.CORSOrigins = []string{"*"}
		h := NewHandler(nil, nil, nil, nil, wildcard)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/ws", nil)
		req.Header.Set("Origin", "https://anything.example")
		if !h.checkWebSocketOrigin(req) {
			t.Error("wildcard config rejected origin")
		}
	})

	t.Run("nil config fails open", func(t *testing.T) {
		h := NewHandler(nil, nil, nil, nil, nil)
		req := httptest.NewRequest(http.MethodGet, "/api/v1/ws", nil)
		req.Header.Set("Origin", "https://dev.example")
		if !h.checkWebSocketOrigin(req) {
			t.Error("nil config should not reject browser clients")
		}
	})
}

func TestWebSocketFirehoseDeliversChanges(t *testing.T) {
	broker := changefeed.NewBroker(changefeed.DefaultBrokerConfig())
	defer broker.Close()

	hub := ws.NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.RunWithContext(ctx)

	handler := NewHandler(broker, broker, realtime.NewHandler(broker), hub, nil)
	mw := NewChiMiddleware(&ChiMiddlewareConfig{
		CORSAllowedOrigins: []string{"*"},
		RateLimitDisabled:  true,
	})
	srv := httptest.NewServer(NewRouter(handler, mw).Setup())
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/ws"
	header := http.Header{"Origin": []string{"http://client.example"}}
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, header)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	defer resp.Body.Close()

	// Wait for the hub to register the client before broadcasting.
	deadline := time.After(2 * time.Second)
	for hub.GetClientCount() != 1 {
		select {
		case <-deadline:
			t.Fatalf("client count = %d, want 1", hub.GetClientCount())
		case <-time.After(5 * time.Millisecond):
		}
	}

	hub.BroadcastChange(realtime.Envelope{
		Type: "vote",
		New:  map[string]any{"id": float64(3), "voteTitle": "song of the summer"},
	})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, raw, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	var msg struct {
		Type string `json:"type"`
		Data struct {
			New map[string]any `json:"new"`
		} `json:"data"`
	}
	if err := json.Unmarshal(raw, &msg); err != nil {
		t.Fatalf("decode %q: %v", raw, err)
	}
	if msg.Type != "vote" {
		t.Errorf("type = %q, want vote", msg.Type)
	}
	if msg.Data.New["voteTitle"] != "song of the summer" {
		t.Errorf("voteTitle = %v", msg.Data.New["voteTitle"])
	}
}

func TestWebSocketUpgradeRejectedWithoutOrigin(t *testing.T) {
	hub := ws.NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.RunWithContext(ctx)

	cfg := &config.Config{}
	cfg.Security.CORSOrigins = []string{"https://picnic.example"}
	handler := NewHandler(nil, nil, nil, hub, cfg)

	srv := httptest.NewServer(http.HandlerFunc(handler.WebSocket))
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	_, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err == nil {
		t.Fatal("dial without Origin succeeded, want rejection")
	}
	if resp != nil {
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusForbidden {
			t.Errorf("status = %d, want 403", resp.StatusCode)
		}
	}
}

func TestRateLimitReturns429(t *testing.T) {
	broker := changefeed.NewBroker(changefeed.DefaultBrokerConfig())
	defer broker.Close()

	handler := NewHandler(broker, broker, realtime.NewHandler(broker), nil, nil)
	mw := NewChiMiddleware(&ChiMiddlewareConfig{
		CORSAllowedOrigins: []string{"*"},
		RateLimitRequests:  2,
		RateLimitWindow:    time.Minute,
	})
	router := NewRouter(handler, mw).Setup()

	var lastCode int
	var lastBody string
	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/changes",
			strings.NewReader(`{"table":"vote","operation":"UPDATE","new":{"id":1}}`))
		req.Header.Set("Content-Type", "application/json")
		req.RemoteAddr = "10.1.2.3:5555"
		router.ServeHTTP(rec, req)
		lastCode = rec.Code
		lastBody = rec.Body.String()
	}

	if lastCode != http.StatusTooManyRequests {
		t.Fatalf("third request = %d, want 429: %s", lastCode, lastBody)
	}

	var resp struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal([]byte(lastBody), &resp); err != nil {
		t.Fatalf("decode 429 body: %v", err)
	}
	if resp.Error.Code != "RATE_LIMITED" {
		t.Errorf("error code = %q, want RATE_LIMITED", resp.Error.Code)
	}
}

func TestHealthEndpointsNotRateLimitedWithAPI(t *testing.T) {
	broker := changefeed.NewBroker(changefeed.DefaultBrokerConfig())
	defer broker.Close()

	handler := NewHandler(broker, broker, realtime.NewHandler(broker), nil, nil)
	mw := NewChiMiddleware(&ChiMiddlewareConfig{
		CORSAllowedOrigins: []string{"*"},
		RateLimitRequests:  1,
		RateLimitWindow:    time.Minute,
	})
	router := NewRouter(handler, mw).Setup()

	// Exhaust the API budget, then confirm health probes still answer.
	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/realtime/vote/bad", nil)
		req.RemoteAddr = "10.9.9.9:1234"
		router.ServeHTTP(rec, req)
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	req.RemoteAddr = "10.9.9.9:1234"
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("health after API exhaustion = %d, want 200", rec.Code)
	}
}
