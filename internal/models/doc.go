// Picnic Realtime - Fan Vote Propagation and Live Updates
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/picnic-realtime

// Package models defines the wire types shared by the HTTP API: the
// standard response envelope, the change ingest submission, and the
// health payload. Change event internals live in internal/changefeed;
// this package only carries what crosses the HTTP boundary.
package models
