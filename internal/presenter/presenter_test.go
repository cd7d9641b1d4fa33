// Picnic Realtime - Fan Vote Propagation and Live Updates
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/picnic-realtime

package presenter

import (
	"errors"
	"io"
	"testing"
	"time"

	"github.com/tomtom215/picnic-realtime/internal/logging"
	"github.com/tomtom215/picnic-realtime/internal/stream"
)

func init() {
	logging.Init(logging.Config{Level: "disabled", Output: io.Discard})
}

func snapshotVote() Row {
	return Row{
		"id":      float64(42),
		"title":   "Song of the Year",
		"startAt": time.Now().Add(time.Minute).UTC().Format(time.RFC3339),
		"stopAt":  time.Now().Add(time.Hour).UTC().Format(time.RFC3339),
	}
}

func snapshotItems() []Row {
	return []Row{
		{"id": float64(1), "voteId": float64(42), "voteTotal": float64(10)},
		{"id": float64(2), "voteId": float64(42), "voteTotal": float64(20)},
	}
}

// TestPresenterParentMerge tests field replacement and logical deletion
func TestPresenterParentMerge(t *testing.T) {
	p := New(snapshotVote(), snapshotItems(), nil)

	if !p.Visible() {
		t.Fatal("expected vote visible after snapshot")
	}

	// Field update merges without losing untouched fields.
	if err := p.Apply(stream.Envelope{
		Type: "vote",
		New:  Row{"id": float64(42), "title": "Renamed"},
	}); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	vote := p.Vote()
	if vote["title"] != "Renamed" {
		t.Errorf("title = %v, want Renamed", vote["title"])
	}
	if vote["startAt"] == nil {
		t.Error("merge dropped untouched startAt field")
	}

	// Null new image marks the vote not-visible, no crash.
	if err := p.Apply(stream.Envelope{Type: "vote", New: nil}); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if p.Visible() {
		t.Error("expected vote hidden after deletion envelope")
	}
}

// TestPresenterItemUpsert tests append-for-new-id and update-for-known-id
func TestPresenterItemUpsert(t *testing.T) {
	p := New(snapshotVote(), snapshotItems(), nil)

	// Unknown id is appended, not overwritten over an existing entry.
	if err := p.Apply(stream.Envelope{
		Type: "vote_item",
		New:  Row{"id": float64(7), "voteId": float64(42), "voteTotal": float64(5)},
	}); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	items := p.Items()
	if len(items) != 3 {
		t.Fatalf("got %d items, want 3", len(items))
	}
	if items[2]["id"] != float64(7) {
		t.Errorf("new item not appended last: %v", items[2]["id"])
	}

	// Known id is updated in place, order unchanged.
	if err := p.Apply(stream.Envelope{
		Type: "vote_item",
		New:  Row{"id": float64(1), "voteId": float64(42), "voteTotal": float64(11)},
	}); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	items = p.Items()
	if len(items) != 3 {
		t.Fatalf("got %d items after update, want 3", len(items))
	}
	if items[0]["voteTotal"] != float64(11) {
		t.Errorf("item 1 voteTotal = %v, want 11", items[0]["voteTotal"])
	}

	// Null new image removes the item.
	if err := p.Apply(stream.Envelope{
		Type: "vote_item",
		New:  nil,
		Old:  Row{"id": float64(2)},
	}); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	items = p.Items()
	if len(items) != 2 {
		t.Fatalf("got %d items after delete, want 2", len(items))
	}
	if _, present := p.Item(float64(2)); present {
		t.Error("deleted item still present")
	}
}

// TestPresenterPickRederivesTotals verifies pick envelopes trigger
// re-derivation from item state instead of trusting the payload
func TestPresenterPickRederivesTotals(t *testing.T) {
	p := New(snapshotVote(), snapshotItems(), nil)

	if got := p.TotalVotes(); got != 30 {
		t.Fatalf("TotalVotes() = %d, want 30 from snapshot", got)
	}

	// The item row carries the authoritative total.
	if err := p.Apply(stream.Envelope{
		Type: "vote_item",
		New:  Row{"id": float64(1), "voteId": float64(42), "voteTotal": float64(105)},
	}); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}

	// The pick payload claims nothing useful; totals come from items.
	if err := p.Apply(stream.Envelope{
		Type: "vote_pick",
		New:  Row{"id": float64(999), "voteId": float64(42), "voteItemId": float64(1)},
	}); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}

	if got := p.TotalVotes(); got != 125 {
		t.Errorf("TotalVotes() = %d, want 125 (105 + 20)", got)
	}
	if got := p.PickCount(); got != 1 {
		t.Errorf("PickCount() = %d, want 1", got)
	}
}

// TestPresenterRejectsUnknownTable verifies the merge switch is closed
func TestPresenterRejectsUnknownTable(t *testing.T) {
	p := New(snapshotVote(), nil, nil)

	err := p.Apply(stream.Envelope{Type: "raffle_entry", New: Row{"id": float64(1)}})
	if !errors.Is(err, ErrUnknownTable) {
		t.Errorf("Apply() error = %v, want ErrUnknownTable", err)
	}
}

// TestPresenterArtistTables verifies artist envelopes use the same merge
// paths
func TestPresenterArtistTables(t *testing.T) {
	p := New(Row{"id": float64(5)}, nil, nil)

	if err := p.Apply(stream.Envelope{
		Type: "artist_vote_item",
		New:  Row{"id": float64(3), "artistVoteId": float64(5), "voteTotal": float64(44)},
	}); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if got := p.TotalVotes(); got != 44 {
		t.Errorf("TotalVotes() = %d, want 44", got)
	}

	if err := p.Apply(stream.Envelope{Type: "artist_vote", New: nil}); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if p.Visible() {
		t.Error("expected artist vote hidden after deletion envelope")
	}
}

// TestEndToEndMerge covers the streamed vote_item scenario: an UPDATE for
// item 7 with voteTotal 105 lands in the item list within one merge
func TestEndToEndMerge(t *testing.T) {
	vote := Row{
		"id":      float64(42),
		"startAt": time.Now().Add(60 * time.Second).UTC().Format(time.RFC3339),
		"stopAt":  time.Now().Add(time.Hour).UTC().Format(time.RFC3339),
	}
	p := New(vote, nil, nil)

	if err := p.Apply(stream.Envelope{
		Type: "vote_item",
		New:  Row{"id": float64(7), "voteId": float64(42), "voteTotal": float64(105)},
	}); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}

	item, ok := p.Item(float64(7))
	if !ok {
		t.Fatal("item 7 missing after merge")
	}
	if item["voteTotal"] != float64(105) {
		t.Errorf("item 7 voteTotal = %v, want 105", item["voteTotal"])
	}
	if got := p.TotalVotes(); got != 105 {
		t.Errorf("TotalVotes() = %d, want 105", got)
	}
}
