// Picnic Realtime - Fan Vote Propagation and Live Updates
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/picnic-realtime

package services

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/thejerf/suture/v4"
)

// mockHTTPServer is a test double for the HTTPServer interface.
type mockHTTPServer struct {
	listenAndServeErr   error
	shutdownErr         error
	listenAndServeCount atomic.Int32
	shutdownCount       atomic.Int32
	stopCh              chan struct{}
}

func newMockHTTPServer() *mockHTTPServer {
	return &mockHTTPServer{stopCh: make(chan struct{})}
}

func (m *mockHTTPServer) ListenAndServe() error {
	m.listenAndServeCount.Add(1)
	if m.listenAndServeErr != nil {
		return m.listenAndServeErr
	}
	<-m.stopCh
	return http.ErrServerClosed
}

func (m *mockHTTPServer) Shutdown(ctx context.Context) error {
	m.shutdownCount.Add(1)
	close(m.stopCh)
	return m.shutdownErr
}

func TestHTTPServerServiceImplementsSutureService(t *testing.T) {
	var _ suture.Service = (*HTTPServerService)(nil)
}

func TestHTTPServerServiceGracefulShutdown(t *testing.T) {
	server := newMockHTTPServer()
	svc := NewHTTPServerService(server, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		errCh <- svc.Serve(ctx)
	}()

	// Let ListenAndServe start before canceling
	deadline := time.After(time.Second)
	for server.listenAndServeCount.Load() == 0 {
		select {
		case <-deadline:
			t.Fatal("ListenAndServe never called")
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()

	select {
	case err := <-errCh:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Serve() error = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}

	if got := server.shutdownCount.Load(); got != 1 {
		t.Errorf("Shutdown called %d times, want 1", got)
	}
}

func TestHTTPServerServiceStartupFailure(t *testing.T) {
	server := newMockHTTPServer()
	server.listenAndServeErr = errors.New("listen tcp :8080: address already in use")
	svc := NewHTTPServerService(server, time.Second)

	err := svc.Serve(context.Background())
	if err == nil {
		t.Fatal("Serve() = nil, want startup error")
	}
	if server.shutdownCount.Load() != 0 {
		t.Error("Shutdown should not be called after startup failure")
	}
}

func TestHTTPServerServiceShutdownError(t *testing.T) {
	server := newMockHTTPServer()
	server.shutdownErr = errors.New("connections still active")
	svc := NewHTTPServerService(server, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		errCh <- svc.Serve(ctx)
	}()

	deadline := time.After(time.Second)
	for server.listenAndServeCount.Load() == 0 {
		select {
		case <-deadline:
			t.Fatal("ListenAndServe never called")
		case <-time.After(5 * time.Millisecond):
		}
	}
	cancel()

	select {
	case err := <-errCh:
		if err == nil || errors.Is(err, context.Canceled) {
			t.Errorf("Serve() error = %v, want shutdown failure", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return")
	}
}

func TestHTTPServerServiceDefaultTimeout(t *testing.T) {
	svc := NewHTTPServerService(newMockHTTPServer(), 0)
	if svc.shutdownTimeout != 10*time.Second {
		t.Errorf("shutdownTimeout = %v, want 10s default", svc.shutdownTimeout)
	}
}

func TestHTTPServerServiceString(t *testing.T) {
	svc := NewHTTPServerService(newMockHTTPServer(), time.Second)
	if svc.String() != "http-server" {
		t.Errorf("String() = %q, want http-server", svc.String())
	}
}
