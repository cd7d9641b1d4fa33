// Picnic Realtime - Fan Vote Propagation and Live Updates
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/picnic-realtime

package changefeed

import (
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

// Table identifies one of the replicated voting tables. The set is closed:
// every consumer switches exhaustively over these values and rejects
// anything else at the ingest boundary.
type Table string

const (
	TableVote           Table = "vote"
	TableVoteItem       Table = "vote_item"
	TableVotePick       Table = "vote_pick"
	TableArtistVote     Table = "artist_vote"
	TableArtistVoteItem Table = "artist_vote_item"
)

// Tables lists every replicated table in deterministic order.
//
// DETERMINISM: iteration over this slice replaces map iteration wherever
// per-table work must happen in a stable order (metrics registration,
// firehose bridging, test assertions).
var Tables = []Table{
	TableVote,
	TableVoteItem,
	TableVotePick,
	TableArtistVote,
	TableArtistVoteItem,
}

// Valid reports whether t names a replicated table.
func (t Table) Valid() bool {
	switch t {
	case TableVote, TableVoteItem, TableVotePick, TableArtistVote, TableArtistVoteItem:
		return true
	}
	return false
}

func (t Table) String() string { return string(t) }

// Operation is the row mutation kind reported by the change feed.
type Operation string

const (
	OpInsert Operation = "INSERT"
	OpUpdate Operation = "UPDATE"
	OpDelete Operation = "DELETE"
)

// Valid reports whether op is a recognized mutation kind.
func (op Operation) Valid() bool {
	switch op {
	case OpInsert, OpUpdate, OpDelete:
		return true
	}
	return false
}

func (op Operation) String() string { return string(op) }

// Row is a schemaless row image as delivered by the replication feed,
// keyed by snake_case column name. Values carry whatever the JSON decoder
// produced (float64 for numbers, string, bool, nil, nested maps).
type Row map[string]any

// ChangeEvent is one committed row mutation. New is nil for DELETE,
// Old is nil for INSERT; UPDATE carries both images when the source
// publishes them.
type ChangeEvent struct {
	ID        string    `json:"id"`
	Table     Table     `json:"table" validate:"required"`
	Operation Operation `json:"operation" validate:"required"`
	New       Row       `json:"new,omitempty"`
	Old       Row       `json:"old,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// NewChangeEvent builds an event with a fresh UUID and UTC timestamp.
func NewChangeEvent(table Table, op Operation, newRow, oldRow Row) ChangeEvent {
	return ChangeEvent{
		ID:        uuid.New().String(),
		Table:     table,
		Operation: op,
		New:       newRow,
		Old:       oldRow,
		Timestamp: time.Now().UTC(),
	}
}

// Validate checks structural invariants before an event enters the feed.
func (e ChangeEvent) Validate() error {
	if !e.Table.Valid() {
		return fmt.Errorf("changefeed: unknown table %q", e.Table)
	}
	if !e.Operation.Valid() {
		return fmt.Errorf("changefeed: unknown operation %q", e.Operation)
	}
	switch e.Operation {
	case OpInsert:
		if e.New == nil {
			return fmt.Errorf("changefeed: INSERT on %s without new row", e.Table)
		}
	case OpDelete:
		if e.Old == nil {
			return fmt.Errorf("changefeed: DELETE on %s without old row", e.Table)
		}
	case OpUpdate:
		if e.New == nil {
			return fmt.Errorf("changefeed: UPDATE on %s without new row", e.Table)
		}
	}
	return nil
}

// Topic returns the per-table broker subject, e.g. "changes.vote_pick".
func (e ChangeEvent) Topic() string { return TopicFor(e.Table) }

// TopicFor maps a table to its broker subject.
func TopicFor(t Table) string { return "changes." + string(t) }

// TopicWildcard matches every change subject.
const TopicWildcard = "changes.>"

// Serializer converts events to and from their wire form. go-json keeps
// encode cost low on the hot publish path.
type Serializer struct{}

// Marshal encodes e as JSON.
func (Serializer) Marshal(e ChangeEvent) ([]byte, error) {
	return json.Marshal(e)
}

// Unmarshal decodes an event and validates it.
func (Serializer) Unmarshal(data []byte) (ChangeEvent, error) {
	var e ChangeEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return ChangeEvent{}, fmt.Errorf("changefeed: decode event: %w", err)
	}
	if err := e.Validate(); err != nil {
		return ChangeEvent{}, err
	}
	return e, nil
}
