// Picnic Realtime - Fan Vote Propagation and Live Updates
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/picnic-realtime

//go:build !nats

package changefeed

import "context"

// NATSFeed is a stub when NATS is not compiled in.
// Build with -tags=nats to enable JetStream consumption.
type NATSFeed struct{}

// NewNATSFeed returns an error when NATS is not compiled in.
func NewNATSFeed(cfg NATSConfig, logger interface{}) (*NATSFeed, error) {
	return nil, ErrNATSNotEnabled
}

// Run is a no-op stub.
func (f *NATSFeed) Run(ctx context.Context) error { return ErrNATSNotEnabled }

// Subscribe is a no-op stub.
func (f *NATSFeed) Subscribe(ctx context.Context, filters ...Filter) (Subscription, error) {
	return nil, ErrNATSNotEnabled
}

// Close is a no-op stub.
func (f *NATSFeed) Close() error { return nil }

// NATSPublisher is a stub when NATS is not compiled in.
type NATSPublisher struct{}

// NewNATSPublisher returns an error when NATS is not compiled in.
func NewNATSPublisher(cfg NATSConfig, logger interface{}) (*NATSPublisher, error) {
	return nil, ErrNATSNotEnabled
}

// Publish is a stub that returns an error.
func (p *NATSPublisher) Publish(ctx context.Context, event ChangeEvent) error {
	return ErrNATSNotEnabled
}

// Close is a no-op stub.
func (p *NATSPublisher) Close() error { return nil }
