// Picnic Realtime - Fan Vote Propagation and Live Updates
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/picnic-realtime

package changefeed

import (
	"context"
	"errors"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/picnic-realtime/internal/logging"
	"github.com/tomtom215/picnic-realtime/internal/metrics"
)

// CircuitBreakerConfig tunes the subscription circuit breaker.
type CircuitBreakerConfig struct {
	Name             string
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	FailureThreshold uint32
}

// DefaultCircuitBreakerConfig returns settings suited to a feed whose
// failures are connection-shaped: trip fast, probe after 10 seconds.
func DefaultCircuitBreakerConfig(name string) CircuitBreakerConfig {
	return CircuitBreakerConfig{
		Name:             name,
		MaxRequests:      3,
		Interval:         60 * time.Second,
		Timeout:          10 * time.Second,
		FailureThreshold: 5,
	}
}

// BreakerFeed wraps a Feed so that repeated subscription failures trip a
// circuit breaker instead of hammering a degraded upstream. While the
// breaker is open, Subscribe fails immediately with ErrBreakerOpen.
type BreakerFeed struct {
	inner Feed
	cb    *gobreaker.CircuitBreaker[Subscription]
	name  string
}

// ErrBreakerOpen is returned while the subscription breaker rejects calls.
var ErrBreakerOpen = errors.New("changefeed: subscription circuit breaker open")

// NewBreakerFeed wraps inner with circuit breaker protection.
func NewBreakerFeed(inner Feed, cfg CircuitBreakerConfig) *BreakerFeed {
	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.CircuitBreakerTransitions.WithLabelValues(name, from.String(), to.String()).Inc()
			metrics.CircuitBreakerState.WithLabelValues(name).Set(breakerStateValue(to))
			logging.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("Subscription circuit breaker state change")
		},
	}

	return &BreakerFeed{
		inner: inner,
		cb:    gobreaker.NewCircuitBreaker[Subscription](settings),
		name:  cfg.Name,
	}
}

// Subscribe registers through the breaker. Context cancellation counts as
// a caller decision, not an upstream failure, and does not trip the breaker.
func (f *BreakerFeed) Subscribe(ctx context.Context, filters ...Filter) (Subscription, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sub, err := f.cb.Execute(func() (Subscription, error) {
		return f.inner.Subscribe(ctx, filters...)
	})
	switch {
	case err == nil:
		metrics.CircuitBreakerRequests.WithLabelValues(f.name, "success").Inc()
		return sub, nil
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		metrics.CircuitBreakerRequests.WithLabelValues(f.name, "rejected").Inc()
		metrics.RecordSubscriptionError("breaker_open")
		return nil, ErrBreakerOpen
	default:
		metrics.CircuitBreakerRequests.WithLabelValues(f.name, "failure").Inc()
		return nil, err
	}
}

// State reports the current breaker state for health endpoints.
func (f *BreakerFeed) State() gobreaker.State { return f.cb.State() }

// Inner returns the wrapped feed. Health reporting uses it to identify
// the underlying feed mode without tripping on the wrapper type.
func (f *BreakerFeed) Inner() Feed { return f.inner }

func breakerStateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	}
	return -1
}
