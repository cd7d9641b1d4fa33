// Picnic Realtime - Fan Vote Propagation and Live Updates
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/picnic-realtime

package changefeed

import (
	"strconv"

	"github.com/goccy/go-json"
)

// Filter narrows a subscription to events matching a table and, optionally,
// column equality predicates against the new row image (old image for
// DELETE, where no new image exists). Ops, when non-empty, restricts the
// mutation kinds delivered.
type Filter struct {
	Table Table
	Eq    map[string]any
	Ops   []Operation
}

// Eq builds an equality filter on a single column. The common case is
// scoping a table to one vote: Eq(TableVoteItem, "vote_id", 7).
func Eq(table Table, column string, value any) Filter {
	return Filter{Table: table, Eq: map[string]any{column: value}}
}

// WithOps restricts the filter to the given mutation kinds.
func (f Filter) WithOps(ops ...Operation) Filter {
	f.Ops = ops
	return f
}

// Matches reports whether e satisfies the filter.
func (f Filter) Matches(e ChangeEvent) bool {
	if f.Table != "" && e.Table != f.Table {
		return false
	}
	if len(f.Ops) > 0 {
		ok := false
		for _, op := range f.Ops {
			if e.Operation == op {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	row := e.New
	if row == nil {
		row = e.Old
	}
	for col, want := range f.Eq {
		got, present := row[col]
		if !present || !valuesEqual(got, want) {
			return false
		}
	}
	return true
}

// MatchAll reports whether e satisfies any of the filters. An empty slice
// matches nothing.
func MatchAll(filters []Filter, e ChangeEvent) bool {
	for _, f := range filters {
		if f.Matches(e) {
			return true
		}
	}
	return false
}

// valuesEqual compares a row value against a filter value with numeric
// coercion. JSON decoding yields float64 for every number while callers
// filter with int identifiers, so 7 must match 7.0 and the string "7".
func valuesEqual(got, want any) bool {
	if got == want {
		return true
	}
	gf, gok := toFloat(got)
	wf, wok := toFloat(want)
	if gok && wok {
		return gf == wf
	}
	return false
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	}
	return 0, false
}
