// Picnic Realtime - Fan Vote Propagation and Live Updates
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/picnic-realtime

package realtime

import (
	"github.com/goccy/go-json"

	"github.com/tomtom215/picnic-realtime/internal/changefeed"
	"github.com/tomtom215/picnic-realtime/internal/normalize"
)

// Envelope is the JSON body of one SSE data frame. Type carries the source
// table name; New and Old are the camelCased row images, null when the
// operation has no corresponding image (Old on INSERT, New on DELETE).
type Envelope struct {
	Type string         `json:"type"`
	New  map[string]any `json:"new"`
	Old  map[string]any `json:"old"`
}

// NewEnvelope normalizes a change event into its client-facing frame body.
func NewEnvelope(event changefeed.ChangeEvent) Envelope {
	return Envelope{
		Type: string(event.Table),
		New:  normalize.CamelizeKeys(event.New),
		Old:  normalize.CamelizeKeys(event.Old),
	}
}

// Encode renders the envelope as compact JSON.
func (e Envelope) Encode() ([]byte, error) {
	return json.Marshal(e)
}
