// Picnic Realtime - Fan Vote Propagation and Live Updates
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/picnic-realtime

package changefeed

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/tomtom215/picnic-realtime/internal/logging"
	"github.com/tomtom215/picnic-realtime/internal/metrics"
)

const (
	// DefaultSubscriptionBuffer is the per-subscription channel depth.
	// A consumer this far behind starts losing events.
	DefaultSubscriptionBuffer = 64

	// DefaultMaxSubscribers caps the registry. Each SSE connection holds
	// one subscription, so this bounds concurrent streaming clients.
	DefaultMaxSubscribers = 10000
)

// BrokerConfig tunes the in-process broker.
type BrokerConfig struct {
	SubscriptionBuffer int
	MaxSubscribers     int
}

// DefaultBrokerConfig returns production defaults.
func DefaultBrokerConfig() BrokerConfig {
	return BrokerConfig{
		SubscriptionBuffer: DefaultSubscriptionBuffer,
		MaxSubscribers:     DefaultMaxSubscribers,
	}
}

// Broker is an in-process Feed and Publisher with an explicit subscriber
// registry. Publish fans an event out to every subscription whose filter
// set matches; a subscription with a full buffer has the event dropped
// rather than stalling the publisher.
type Broker struct {
	mu     sync.RWMutex
	subs   map[uint64]*brokerSub
	nextID uint64
	closed bool
	cfg    BrokerConfig
}

// NewBroker creates a broker with the given config. Zero-valued fields
// fall back to defaults.
func NewBroker(cfg BrokerConfig) *Broker {
	if cfg.SubscriptionBuffer <= 0 {
		cfg.SubscriptionBuffer = DefaultSubscriptionBuffer
	}
	if cfg.MaxSubscribers <= 0 {
		cfg.MaxSubscribers = DefaultMaxSubscribers
	}
	return &Broker{
		subs: make(map[uint64]*brokerSub),
		cfg:  cfg,
	}
}

type brokerSub struct {
	id      uint64
	broker  *Broker
	filters []Filter
	events  chan ChangeEvent
	once    sync.Once
}

func (s *brokerSub) Events() <-chan ChangeEvent { return s.events }

func (s *brokerSub) Unsubscribe() {
	s.once.Do(func() {
		s.broker.remove(s.id)
		close(s.events)
	})
}

// Subscribe registers a consumer for events matching any of filters.
// An empty filter list is rejected: a subscription that matches nothing
// is always a caller bug.
func (b *Broker) Subscribe(ctx context.Context, filters ...Filter) (Subscription, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(filters) == 0 {
		return nil, ErrNoFilters
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		metrics.RecordSubscriptionError("closed")
		return nil, ErrFeedClosed
	}
	if len(b.subs) >= b.cfg.MaxSubscribers {
		metrics.RecordSubscriptionError("rejected")
		return nil, ErrTooManySubscribers
	}

	b.nextID++
	sub := &brokerSub{
		id:      b.nextID,
		broker:  b,
		filters: filters,
		events:  make(chan ChangeEvent, b.cfg.SubscriptionBuffer),
	}
	b.subs[sub.id] = sub
	metrics.FeedSubscribers.Set(float64(len(b.subs)))

	return sub, nil
}

// Publish validates the event and fans it out to matching subscriptions.
//
// DETERMINISM: subscriptions receive the event in registration order, so
// two subscribers of the same filter observe identical orderings.
func (b *Broker) Publish(ctx context.Context, event ChangeEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := event.Validate(); err != nil {
		return err
	}

	start := time.Now()

	// The read lock covers the sends: Unsubscribe closes a channel only
	// after remove acquires the write lock, so no send races a close.
	b.mu.RLock()
	if b.closed {
		b.mu.RUnlock()
		return ErrFeedClosed
	}
	targets := make([]*brokerSub, 0, len(b.subs))
	for _, sub := range b.subs {
		if MatchAll(sub.filters, event) {
			targets = append(targets, sub)
		}
	}
	sort.Slice(targets, func(i, j int) bool { return targets[i].id < targets[j].id })

	for _, sub := range targets {
		select {
		case sub.events <- event:
		default:
			metrics.RecordFeedDrop(string(event.Table))
			logging.Warn().
				Uint64("subscription_id", sub.id).
				Str("table", string(event.Table)).
				Str("operation", string(event.Operation)).
				Msg("Dropping change event on saturated subscription")
		}
	}
	b.mu.RUnlock()

	metrics.RecordFeedEvent(string(event.Table), string(event.Operation))
	metrics.FeedPublishDuration.Observe(time.Since(start).Seconds())
	return nil
}

// Close shuts the broker down and closes every subscription channel.
// Subsequent Subscribe and Publish calls return ErrFeedClosed.
func (b *Broker) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	remaining := make([]*brokerSub, 0, len(b.subs))
	for id, sub := range b.subs {
		remaining = append(remaining, sub)
		delete(b.subs, id)
	}
	metrics.FeedSubscribers.Set(0)
	// Channels are closed outside the lock: a concurrent Unsubscribe holds
	// its sync.Once while waiting for b.mu in remove.
	b.mu.Unlock()

	for _, sub := range remaining {
		sub.once.Do(func() { close(sub.events) })
	}
}

// SubscriberCount reports registered subscriptions, for health reporting.
func (b *Broker) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

func (b *Broker) remove(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.subs[id]; ok {
		delete(b.subs, id)
		metrics.FeedSubscribers.Set(float64(len(b.subs)))
	}
}
