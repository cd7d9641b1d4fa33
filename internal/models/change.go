// Picnic Realtime - Fan Vote Propagation and Live Updates
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/picnic-realtime

package models

// ChangeSubmission is the body of POST /api/v1/changes, the ingest
// boundary where database change events enter the fan-out path. Row
// images arrive exactly as the replication feed emits them, snake_case
// columns included; normalization happens on the way out to clients,
// never on the way in.
type ChangeSubmission struct {
	Table     string         `json:"table" validate:"required,oneof=vote vote_item vote_pick artist_vote artist_vote_item"`
	Operation string         `json:"operation" validate:"required,oneof=INSERT UPDATE DELETE"`
	New       map[string]any `json:"new,omitempty"`
	Old       map[string]any `json:"old,omitempty"`
}

// ChangeAccepted is the response payload for an accepted change event.
type ChangeAccepted struct {
	EventID string `json:"event_id"`
	Table   string `json:"table"`
	Topic   string `json:"topic"`
}
