// Picnic Realtime - Fan Vote Propagation and Live Updates
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/picnic-realtime

// Package presenter maintains the client view of one vote: an initial
// snapshot merged with live stream envelopes, plus a one-shot reload
// timer armed at the vote's next start/stop boundary.
package presenter

import (
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/tomtom215/picnic-realtime/internal/changefeed"
	"github.com/tomtom215/picnic-realtime/internal/logging"
	"github.com/tomtom215/picnic-realtime/internal/stream"
)

// ErrUnknownTable is returned by Apply for an envelope type outside the
// closed table set. A new replicated table must be handled here
// explicitly, never silently skipped.
var ErrUnknownTable = fmt.Errorf("presenter: envelope type outside known table set")

// Row is a camelCase row image as delivered in stream envelopes.
type Row = map[string]any

// Presenter merges stream envelopes into a consistent view of one vote.
// Apply must be called from a single goroutine in envelope arrival order;
// accessors are safe from any goroutine.
type Presenter struct {
	mu      sync.RWMutex
	vote    Row
	visible bool

	itemOrder []string
	items     map[string]Row

	total     int64
	pickCount int64

	startAt time.Time
	stopAt  time.Time
	sched   *ReloadScheduler
}

// New creates a presenter from the server-rendered snapshot. The scheduler
// may be nil when boundary reloads are not wanted (tests, headless use).
func New(vote Row, items []Row, sched *ReloadScheduler) *Presenter {
	p := &Presenter{
		vote:    copyRow(vote),
		visible: vote != nil,
		items:   make(map[string]Row, len(items)),
		sched:   sched,
	}
	for _, item := range items {
		key, ok := rowID(item)
		if !ok {
			continue
		}
		p.itemOrder = append(p.itemOrder, key)
		p.items[key] = copyRow(item)
	}
	p.deriveTotal()
	p.rescheduleLocked()
	return p
}

// Apply merges one envelope. The switch over the table enum is exhaustive:
// every replicated table has a branch, anything else is an error.
func (p *Presenter) Apply(env stream.Envelope) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch changefeed.Table(env.Type) {
	case changefeed.TableVote, changefeed.TableArtistVote:
		p.applyParent(env.New)
	case changefeed.TableVoteItem, changefeed.TableArtistVoteItem:
		p.applyItem(env.New, env.Old)
	case changefeed.TableVotePick:
		// Insert-only increment signal. Totals already ride on the item
		// rows, so the payload is not trusted; re-derive instead.
		p.pickCount++
		p.deriveTotal()
	default:
		return fmt.Errorf("%w: %q", ErrUnknownTable, env.Type)
	}
	return nil
}

// applyParent replaces vote fields with the new image. A null image is a
// logical deletion: the vote is hidden, not crashed on.
func (p *Presenter) applyParent(newRow Row) {
	if newRow == nil {
		p.visible = false
		if p.sched != nil {
			p.sched.Stop()
		}
		return
	}
	if p.vote == nil {
		p.vote = make(Row, len(newRow))
	}
	for k, v := range newRow {
		p.vote[k] = v
	}
	p.visible = true
	p.rescheduleLocked()
}

// applyItem upserts into the items collection keyed by item id. A null new
// image removes the item.
func (p *Presenter) applyItem(newRow, oldRow Row) {
	if newRow == nil {
		key, ok := rowID(oldRow)
		if !ok {
			return
		}
		if _, present := p.items[key]; present {
			delete(p.items, key)
			for i, k := range p.itemOrder {
				if k == key {
					p.itemOrder = append(p.itemOrder[:i], p.itemOrder[i+1:]...)
					break
				}
			}
		}
		p.deriveTotal()
		return
	}

	key, ok := rowID(newRow)
	if !ok {
		logging.Warn().Msg("Dropping item envelope without id")
		return
	}
	if _, present := p.items[key]; !present {
		// New ids are appended, preserving arrival order.
		p.itemOrder = append(p.itemOrder, key)
	}
	p.items[key] = copyRow(newRow)
	p.deriveTotal()
}

// Vote returns a copy of the current vote row, or nil before any data.
func (p *Presenter) Vote() Row {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return copyRow(p.vote)
}

// Visible reports whether the vote should render. False after a parent
// deletion envelope.
func (p *Presenter) Visible() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.visible
}

// Items returns copies of the item rows in display order.
func (p *Presenter) Items() []Row {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]Row, 0, len(p.itemOrder))
	for _, key := range p.itemOrder {
		out = append(out, copyRow(p.items[key]))
	}
	return out
}

// Item returns the item with the given id, if present.
func (p *Presenter) Item(id any) (Row, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	item, ok := p.items[idKey(id)]
	if !ok {
		return nil, false
	}
	return copyRow(item), true
}

// TotalVotes is the displayed total, derived from item rows.
func (p *Presenter) TotalVotes() int64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.total
}

// PickCount reports how many pick signals have been observed.
func (p *Presenter) PickCount() int64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.pickCount
}

// Close clears the boundary timer. Called on unmount.
func (p *Presenter) Close() {
	if p.sched != nil {
		p.sched.Stop()
	}
}

// deriveTotal recomputes the displayed total from item state.
func (p *Presenter) deriveTotal() {
	var total int64
	for _, item := range p.items {
		total += asInt64(item["voteTotal"])
	}
	p.total = total
}

// rescheduleLocked re-arms the boundary timer when the vote's timestamps
// changed. Caller holds p.mu.
func (p *Presenter) rescheduleLocked() {
	if p.sched == nil || p.vote == nil {
		return
	}
	startAt := asTime(p.vote["startAt"])
	stopAt := asTime(p.vote["stopAt"])
	if startAt.Equal(p.startAt) && stopAt.Equal(p.stopAt) {
		return
	}
	p.startAt = startAt
	p.stopAt = stopAt
	p.sched.Schedule(startAt, stopAt)
}

func rowID(row Row) (string, bool) {
	if row == nil {
		return "", false
	}
	id, ok := row["id"]
	if !ok || id == nil {
		return "", false
	}
	return idKey(id), true
}

// idKey normalizes a primary key to a comparable string. JSON decoding
// delivers numbers as float64 while snapshots may carry int64.
func idKey(id any) string {
	switch v := id.(type) {
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(v, 10)
	case int:
		return strconv.Itoa(v)
	case string:
		return v
	default:
		return fmt.Sprintf("%v", v)
	}
}

func asInt64(v any) int64 {
	switch n := v.(type) {
	case float64:
		return int64(n)
	case int64:
		return n
	case int:
		return int64(n)
	}
	return 0
}

func asTime(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		if ts, err := time.Parse(time.RFC3339, t); err == nil {
			return ts
		}
	}
	return time.Time{}
}

func copyRow(row Row) Row {
	if row == nil {
		return nil
	}
	out := make(Row, len(row))
	for k, v := range row {
		out[k] = v
	}
	return out
}
