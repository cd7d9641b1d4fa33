// Picnic Realtime - Fan Vote Propagation and Live Updates
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/picnic-realtime

package presenter

import (
	"sync"
	"time"
)

// ReloadScheduler owns the single boundary-reload timer for one presenter.
// Status transitions (scheduled to ongoing, ongoing to ended) change which
// UI elements exist, and a full reload at the boundary is cheaper to get
// right than incremental state transitions. The scheduler is an explicit
// object with a start/stop lifecycle: no package-level timer state.
type ReloadScheduler struct {
	mu     sync.Mutex
	timer  *time.Timer
	reload func()

	now       func() time.Time
	afterFunc func(time.Duration, func()) *time.Timer
}

// SchedulerOption configures a ReloadScheduler.
type SchedulerOption func(*ReloadScheduler)

// WithClock injects the time source and timer factory, for tests.
func WithClock(now func() time.Time, afterFunc func(time.Duration, func()) *time.Timer) SchedulerOption {
	return func(s *ReloadScheduler) {
		s.now = now
		s.afterFunc = afterFunc
	}
}

// NewReloadScheduler creates a scheduler that invokes reload at each
// scheduled boundary.
func NewReloadScheduler(reload func(), opts ...SchedulerOption) *ReloadScheduler {
	s := &ReloadScheduler{
		reload:    reload,
		now:       time.Now,
		afterFunc: time.AfterFunc,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Schedule arms a one-shot reload at the soonest future boundary of
// startAt/stopAt, replacing any previously armed timer. When neither
// timestamp is in the future the existing timer is cleared and nothing is
// armed. Returns the armed boundary and whether one exists.
func (s *ReloadScheduler) Schedule(startAt, stopAt time.Time) (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}

	now := s.now()
	next, ok := nextBoundary(now, startAt, stopAt)
	if !ok {
		return time.Time{}, false
	}

	s.timer = s.afterFunc(next.Sub(now), s.reload)
	return next, true
}

// Stop clears any armed timer. Called on unmount.
func (s *ReloadScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

// Armed reports whether a reload is currently scheduled.
func (s *ReloadScheduler) Armed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timer != nil
}

// nextBoundary picks whichever of startAt/stopAt is soonest but still in
// the future. Zero timestamps are ignored.
func nextBoundary(now, startAt, stopAt time.Time) (time.Time, bool) {
	var next time.Time
	for _, ts := range []time.Time{startAt, stopAt} {
		if ts.IsZero() || !ts.After(now) {
			continue
		}
		if next.IsZero() || ts.Before(next) {
			next = ts
		}
	}
	return next, !next.IsZero()
}
