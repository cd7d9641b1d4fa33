// Picnic Realtime - Fan Vote Propagation and Live Updates
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/picnic-realtime

package supervisor

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
)

// MockService is a test helper that implements suture.Service.
// It provides control over service behavior for testing supervisor
// restart and shutdown handling.
type MockService struct {
	name       string
	startCount atomic.Int32
	stopCount  atomic.Int32
	failCount  atomic.Int32
	maxFails   int32
	err        error
	mu         sync.Mutex
}

// NewMockService creates a new mock service for testing.
func NewMockService(name string) *MockService {
	return &MockService{name: name}
}

// Serve implements suture.Service. With FailTimes set, the service fails
// that many serves before settling into a block-until-canceled loop.
func (m *MockService) Serve(ctx context.Context) error {
	m.startCount.Add(1)
	defer m.stopCount.Add(1)

	m.mu.Lock()
	err := m.err
	maxFails := m.maxFails
	m.mu.Unlock()

	if maxFails > 0 {
		current := m.failCount.Add(1)
		if current <= maxFails {
			return errors.New("simulated failure")
		}
	}

	if err != nil {
		return err
	}

	<-ctx.Done()
	return ctx.Err()
}

// String implements fmt.Stringer so suture logs name the service.
func (m *MockService) String() string {
	return m.name
}

// SetError makes every subsequent Serve return err immediately.
func (m *MockService) SetError(err error) {
	m.mu.Lock()
	m.err = err
	m.mu.Unlock()
}

// FailTimes makes the next n Serve calls fail before the service
// starts running normally.
func (m *MockService) FailTimes(n int) {
	m.mu.Lock()
	m.maxFails = int32(n)
	m.mu.Unlock()
}

// StartCount returns the number of times Serve has been called.
func (m *MockService) StartCount() int {
	return int(m.startCount.Load())
}

// StopCount returns the number of times Serve has returned.
func (m *MockService) StopCount() int {
	return int(m.stopCount.Load())
}
