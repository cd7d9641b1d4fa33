// Picnic Realtime - Fan Vote Propagation and Live Updates
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/picnic-realtime

// Package services provides suture.Service wrappers for the long-lived
// components of the vote propagation service.
//
// Two wrappers cover every component:
//
//   - HTTPServerService adapts *http.Server's ListenAndServe/Shutdown
//     pair, draining SSE and WebSocket connections on shutdown.
//   - RunnerService adapts any blocking run-until-canceled loop (the
//     WebSocket hub, the feed bridge, the NATS feed consumer).
//
// The wrappers depend on small local interfaces rather than concrete
// types, so they never import the packages they supervise.
package services
