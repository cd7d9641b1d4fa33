// Picnic Realtime - Fan Vote Propagation and Live Updates
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/picnic-realtime

package changefeed

import (
	"context"
	"errors"
)

var (
	// ErrFeedClosed is returned by Subscribe and Publish after Close.
	ErrFeedClosed = errors.New("changefeed: feed closed")

	// ErrTooManySubscribers is returned when the subscriber registry is full.
	ErrTooManySubscribers = errors.New("changefeed: subscriber limit reached")

	// ErrNoFilters is returned by Subscribe when no filters are given.
	ErrNoFilters = errors.New("changefeed: subscription requires at least one filter")
)

// Subscription is one registered consumer of change events. It is owned
// exclusively by its creator: Events must be drained by a single goroutine
// and Unsubscribe must be called exactly once when the consumer goes away.
type Subscription interface {
	// Events delivers matching change events. The channel is closed after
	// Unsubscribe returns or the feed shuts down.
	Events() <-chan ChangeEvent

	// Unsubscribe removes the subscription from the registry and closes
	// the event channel. Safe to call more than once.
	Unsubscribe()
}

// Feed is a source of row-level change events. Subscribe registers interest
// in the union of the given filters; an event is delivered once per
// subscription even when several filters match it.
type Feed interface {
	Subscribe(ctx context.Context, filters ...Filter) (Subscription, error)
}

// Publisher accepts change events for fan-out. The in-process broker
// implements both sides; the NATS deployment splits them across processes.
type Publisher interface {
	Publish(ctx context.Context, event ChangeEvent) error
}
