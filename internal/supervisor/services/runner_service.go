// Picnic Realtime - Fan Vote Propagation and Live Updates
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/picnic-realtime

package services

import (
	"context"
)

// ContextRunner is the common run-loop shape of the service's long-lived
// components. Satisfied by:
//   - (*websocket.Hub).RunWithContext
//   - (*websocket.FeedBridge).RunWithContext (via RunWithContext as Run)
//   - (*changefeed.NATSFeed).Run
type ContextRunner interface {
	Run(ctx context.Context) error
}

// RunnerFunc adapts a bare run function to ContextRunner, the way
// http.HandlerFunc adapts handlers. Used to wrap RunWithContext methods
// without an extra named type per component.
type RunnerFunc func(ctx context.Context) error

// Run implements ContextRunner.
func (f RunnerFunc) Run(ctx context.Context) error { return f(ctx) }

// RunnerService wraps a ContextRunner as a supervised service. The
// component's run loop already implements the suture.Service pattern
// (block until the context is canceled, return an error on failure), so
// the wrapper only contributes the name suture logs restarts under.
type RunnerService struct {
	runner ContextRunner
	name   string
}

// NewRunnerService creates a supervised wrapper around runner.
//
// Example usage:
//
//	hub := websocket.NewHub()
//	svc := services.NewRunnerService("websocket-hub", services.RunnerFunc(hub.RunWithContext))
//	tree.AddMessagingService(svc)
func NewRunnerService(name string, runner ContextRunner) *RunnerService {
	return &RunnerService{
		runner: runner,
		name:   name,
	}
}

// Serve implements suture.Service.
func (s *RunnerService) Serve(ctx context.Context) error {
	return s.runner.Run(ctx)
}

// String implements fmt.Stringer for logging.
// Suture uses this to identify the service in log messages.
func (s *RunnerService) String() string {
	return s.name
}
