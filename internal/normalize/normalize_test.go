// Picnic Realtime - Fan Vote Propagation and Live Updates
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/picnic-realtime

package normalize

import (
	"errors"
	"reflect"
	"testing"
)

// TestCamelizeKey tests identifier conversion
func TestCamelizeKey(t *testing.T) {
	tests := []struct {
		name string
		key  string
		want string
	}{
		{"single word", "id", "id"},
		{"two words", "vote_total", "voteTotal"},
		{"three words", "artist_vote_item", "artistVoteItem"},
		{"already camelCase", "voteTotal", "voteTotal"},
		{"timestamp column", "created_at", "createdAt"},
		{"double underscore", "vote__total", "voteTotal"},
		{"leading underscore", "_private", "private"},
		{"trailing underscore", "vote_", "vote"},
		{"all underscores", "___", "___"},
		{"empty", "", ""},
		{"numeric segment", "item_2_total", "item2Total"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CamelizeKey(tt.key); got != tt.want {
				t.Errorf("CamelizeKey(%q) = %q, want %q", tt.key, got, tt.want)
			}
		})
	}
}

// TestCamelizeKeyIdempotent verifies converting twice equals converting once
func TestCamelizeKeyIdempotent(t *testing.T) {
	keys := []string{"vote_total", "id", "artist_vote_item_id", "voteTotal", "_private", "created_at"}
	for _, k := range keys {
		once := CamelizeKey(k)
		twice := CamelizeKey(once)
		if once != twice {
			t.Errorf("CamelizeKey not idempotent for %q: %q != %q", k, once, twice)
		}
	}
}

// TestCamelizeKeys tests shallow row conversion
func TestCamelizeKeys(t *testing.T) {
	tests := []struct {
		name string
		row  map[string]any
		want map[string]any
	}{
		{
			name: "nil row stays nil",
			row:  nil,
			want: nil,
		},
		{
			name: "empty row",
			row:  map[string]any{},
			want: map[string]any{},
		},
		{
			name: "vote item row",
			row: map[string]any{
				"id":         float64(3),
				"vote_id":    float64(7),
				"vote_total": float64(105),
				"created_at": "2026-08-30T10:00:00Z",
			},
			want: map[string]any{
				"id":        float64(3),
				"voteId":    float64(7),
				"voteTotal": float64(105),
				"createdAt": "2026-08-30T10:00:00Z",
			},
		},
		{
			name: "nested object keys converted",
			row: map[string]any{
				"item_meta": map[string]any{"artist_name": "IVE"},
			},
			want: map[string]any{
				"itemMeta": map[string]any{"artistName": "IVE"},
			},
		},
		{
			name: "array elements converted",
			row: map[string]any{
				"vote_items": []any{
					map[string]any{"vote_total": float64(1)},
					"scalar",
					nil,
				},
			},
			want: map[string]any{
				"voteItems": []any{
					map[string]any{"voteTotal": float64(1)},
					"scalar",
					nil,
				},
			},
		},
		{
			name: "nil value preserved",
			row:  map[string]any{"deleted_at": nil},
			want: map[string]any{"deletedAt": nil},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CamelizeKeys(tt.row)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("CamelizeKeys() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

// TestCamelizeKeysIdempotent verifies an already-normalized object passes
// through deep-equal to the input
func TestCamelizeKeysIdempotent(t *testing.T) {
	normalized := map[string]any{
		"id":        float64(7),
		"voteTotal": float64(105),
		"itemMeta":  map[string]any{"artistName": "IVE"},
		"voteItems": []any{map[string]any{"voteTotal": float64(1)}},
		"deletedAt": nil,
	}

	got := CamelizeKeys(normalized)
	if !reflect.DeepEqual(got, normalized) {
		t.Errorf("CamelizeKeys() on normalized input = %#v, want unchanged %#v", got, normalized)
	}
}

// TestCamelizeKeysDoesNotMutateInput verifies the source row is untouched
func TestCamelizeKeysDoesNotMutateInput(t *testing.T) {
	row := map[string]any{"vote_total": float64(1)}
	CamelizeKeys(row)
	if _, ok := row["vote_total"]; !ok {
		t.Error("input row was mutated")
	}
	if len(row) != 1 {
		t.Errorf("input row has %d keys, want 1", len(row))
	}
}

// TestCamelizeKeysCollision tests deterministic first-writer-wins and the
// report hook
func TestCamelizeKeysCollision(t *testing.T) {
	row := map[string]any{
		"vote_total": float64(1),
		"voteTotal":  float64(2),
	}

	var reports []CollisionReport
	got := CamelizeKeysReport(row, func(r CollisionReport) {
		reports = append(reports, r)
	})

	// "voteTotal" < "vote_total" lexicographically, so it wins.
	if got["voteTotal"] != float64(2) {
		t.Errorf("voteTotal = %v, want 2 (first writer in sorted key order)", got["voteTotal"])
	}
	if len(got) != 1 {
		t.Errorf("result has %d keys, want 1", len(got))
	}
	if len(reports) != 1 {
		t.Fatalf("got %d collision reports, want 1", len(reports))
	}
	r := reports[0]
	if r.CamelKey != "voteTotal" || r.Kept != "voteTotal" || r.Dropped != "vote_total" {
		t.Errorf("unexpected report: %+v", r)
	}
}

// TestCamelizeKeysStrict tests the failing variant
func TestCamelizeKeysStrict(t *testing.T) {
	clean := map[string]any{"vote_id": float64(7), "vote_total": float64(105)}
	got, err := CamelizeKeysStrict(clean)
	if err != nil {
		t.Fatalf("CamelizeKeysStrict() error = %v", err)
	}
	if got["voteId"] != float64(7) {
		t.Errorf("voteId = %v, want 7", got["voteId"])
	}

	colliding := map[string]any{"vote_total": float64(1), "voteTotal": float64(2)}
	if _, err := CamelizeKeysStrict(colliding); !errors.Is(err, ErrKeyCollision) {
		t.Errorf("CamelizeKeysStrict() error = %v, want ErrKeyCollision", err)
	}
}
