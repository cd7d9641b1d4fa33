// Picnic Realtime - Fan Vote Propagation and Live Updates
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/picnic-realtime

// Package supervisor builds the suture v4 supervision tree that keeps the
// vote propagation service running.
//
// # Tree layout
//
//	picnic-realtime (root)
//	├── feed-layer        NATS change feed consumer (when enabled)
//	├── messaging-layer   WebSocket hub, feed-to-hub bridge
//	└── api-layer         HTTP server (SSE, ingest, health)
//
// The layering is about failure isolation. The feed bridge restarting
// after the broker drops its subscription must not tear down the HTTP
// server, and a hub panic must not interrupt the feed consumer. Each
// child supervisor restarts its own services with suture's standard
// failure accounting (threshold, decay, backoff).
//
// Supervisor events are logged through sutureslog, bridged to the
// application's zerolog output via logging.NewSlogLogger, so restarts
// and backoff transitions land in the same stream as everything else.
//
// Long-lived components plug in through the wrappers in the services
// subpackage: HTTPServerService for the HTTP server's
// ListenAndServe/Shutdown lifecycle, RunnerService for anything already
// shaped as a blocking run-until-canceled loop.
package supervisor
