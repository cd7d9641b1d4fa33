// Picnic Realtime - Fan Vote Propagation and Live Updates
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/picnic-realtime

// Package normalize converts snake_case column names from the change feed
// into the camelCase field names the web clients consume. Conversion
// recurses into nested objects and arrays; scalar values and nil pass
// through unchanged.
package normalize

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/tomtom215/picnic-realtime/internal/metrics"
)

// ErrKeyCollision is returned by CamelizeKeysStrict when two distinct
// source keys map to the same camelCase name.
var ErrKeyCollision = errors.New("normalize: camelCase key collision")

// CamelizeKey converts one snake_case identifier to camelCase.
// Already-camelCase input passes through unchanged, so the conversion is
// idempotent: CamelizeKey(CamelizeKey(k)) == CamelizeKey(k).
func CamelizeKey(key string) string {
	if !strings.Contains(key, "_") {
		return key
	}

	var b strings.Builder
	b.Grow(len(key))
	first := true
	for _, seg := range strings.Split(key, "_") {
		if seg == "" {
			continue
		}
		if first {
			b.WriteString(seg)
			first = false
			continue
		}
		runes := []rune(seg)
		runes[0] = unicode.ToUpper(runes[0])
		b.WriteString(string(runes))
	}
	if b.Len() == 0 {
		// Key was all underscores; keep it rather than emitting "".
		return key
	}
	return b.String()
}

// CamelizeKeys returns a new map with every key camelized, recursing into
// nested maps and slices. A nil input yields nil, preserving the
// INSERT/DELETE distinction where one row image is absent.
//
// DETERMINISM: when two source keys collide after conversion ("vote_total"
// and "voteTotal"), the lexicographically smallest source key wins. The
// collision is counted and logged through the metrics hook; callers that
// must not lose data use CamelizeKeysStrict.
func CamelizeKeys(row map[string]any) map[string]any {
	return camelizeMap(row, nil)
}

// CollisionReport describes one converted-key collision.
type CollisionReport struct {
	CamelKey string
	Kept     string
	Dropped  string
}

// CamelizeKeysReport camelizes row and invokes onCollision for every
// dropped key, at any nesting depth. The hook may be nil.
func CamelizeKeysReport(row map[string]any, onCollision func(CollisionReport)) map[string]any {
	return camelizeMap(row, onCollision)
}

// CamelizeKeysStrict camelizes row but fails on the first collision
// instead of dropping a value.
func CamelizeKeysStrict(row map[string]any) (map[string]any, error) {
	var firstErr error
	out := camelizeMap(row, func(r CollisionReport) {
		if firstErr == nil {
			firstErr = fmt.Errorf("%w: %q and %q both map to %q",
				ErrKeyCollision, r.Kept, r.Dropped, r.CamelKey)
		}
	})
	if firstErr != nil {
		return nil, firstErr
	}
	return out, nil
}

func camelizeMap(row map[string]any, onCollision func(CollisionReport)) map[string]any {
	if row == nil {
		return nil
	}

	keys := make([]string, 0, len(row))
	for k := range row {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make(map[string]any, len(row))
	winner := make(map[string]string, len(row))
	for _, k := range keys {
		ck := CamelizeKey(k)
		if kept, dup := winner[ck]; dup {
			metrics.RecordNormalizerCollision()
			if onCollision != nil {
				onCollision(CollisionReport{CamelKey: ck, Kept: kept, Dropped: k})
			}
			continue
		}
		winner[ck] = k
		out[ck] = camelizeValue(row[k], onCollision)
	}
	return out
}

func camelizeValue(v any, onCollision func(CollisionReport)) any {
	switch val := v.(type) {
	case map[string]any:
		return camelizeMap(val, onCollision)
	case []any:
		out := make([]any, len(val))
		for i, elem := range val {
			out[i] = camelizeValue(elem, onCollision)
		}
		return out
	default:
		return v
	}
}
