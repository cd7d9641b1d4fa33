// Picnic Realtime - Fan Vote Propagation and Live Updates
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/picnic-realtime

package changefeed

import (
	"errors"
	"time"
)

// ErrNATSNotEnabled is returned by NATS constructors in builds without
// the nats tag.
var ErrNATSNotEnabled = errors.New("changefeed: NATS support not enabled in this build")

// NATSConfig configures the JetStream-backed feed. Compiled into every
// build so config loading works regardless of the nats tag.
type NATSConfig struct {
	URL           string
	StreamName    string
	DurableName   string
	QueueGroup    string
	MaxReconnects int
	ReconnectWait time.Duration
	AckWait       time.Duration
	MaxAge        time.Duration
	MaxBytes      int64
	MaxMsgs       int64
	CloseTimeout  time.Duration

	// Broker settings for the local fan-out stage.
	Broker BrokerConfig
}

// DefaultNATSConfig returns production defaults for a single CHANGES
// stream over the changes.> subject hierarchy.
func DefaultNATSConfig() NATSConfig {
	return NATSConfig{
		URL:           "nats://localhost:4222",
		StreamName:    "CHANGES",
		DurableName:   "picnic-realtime",
		QueueGroup:    "",
		MaxReconnects: -1,
		ReconnectWait: 2 * time.Second,
		AckWait:       30 * time.Second,
		MaxAge:        24 * time.Hour,
		MaxBytes:      1 << 30,
		MaxMsgs:       1_000_000,
		CloseTimeout:  5 * time.Second,
		Broker:        DefaultBrokerConfig(),
	}
}
