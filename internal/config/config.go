// Picnic Realtime - Fan Vote Propagation and Live Updates
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/picnic-realtime

package config

import (
	"time"

	"github.com/tomtom215/picnic-realtime/internal/changefeed"
)

// Config is the root configuration for the realtime service.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	NATS     NATSConfig     `koanf:"nats"`     // Optional: JetStream-backed change feed (builds with the nats tag)
	Stream   StreamConfig   `koanf:"stream"`   // In-process fan-out and SSE tuning
	Security SecurityConfig `koanf:"security"` // CORS, rate limiting, proxy trust
	Logging  LoggingConfig  `koanf:"logging"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	Timeout         time.Duration `koanf:"timeout"`          // Read/idle timeout; streaming responses are exempt from the write deadline
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"` // Grace period for draining open streams
	Environment     string        `koanf:"environment"`      // development or production
}

// NATSConfig contains JetStream change feed settings. When Enabled is
// false the service runs on the in-memory broker alone, which is the
// right mode for single-instance deployments and tests.
type NATSConfig struct {
	Enabled        bool          `koanf:"enabled"`
	URL            string        `koanf:"url"`
	EmbeddedServer bool          `koanf:"embedded_server"` // Run nats-server in-process instead of dialing URL
	StoreDir       string        `koanf:"store_dir"`       // JetStream storage directory for the embedded server
	StreamName     string        `koanf:"stream_name"`
	DurableName    string        `koanf:"durable_name"`
	QueueGroup     string        `koanf:"queue_group"`
	MaxReconnects  int           `koanf:"max_reconnects"`
	ReconnectWait  time.Duration `koanf:"reconnect_wait"`
	AckWait        time.Duration `koanf:"ack_wait"`
	MaxAge         time.Duration `koanf:"max_age"`
	MaxBytes       int64         `koanf:"max_bytes"`
	MaxMsgs        int64         `koanf:"max_msgs"`
	CloseTimeout   time.Duration `koanf:"close_timeout"`
}

// StreamConfig tunes the in-process broker and the SSE endpoints.
type StreamConfig struct {
	SubscriptionBuffer int           `koanf:"subscription_buffer"` // Per-subscriber channel depth before events are dropped
	MaxSubscribers     int           `koanf:"max_subscribers"`     // Hard cap on concurrent subscriptions
	Heartbeat          time.Duration `koanf:"heartbeat"`           // SSE comment interval to keep proxies from closing idle streams
}

// SecurityConfig contains CORS and rate limiting settings.
type SecurityConfig struct {
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	TrustedProxies    []string      `koanf:"trusted_proxies"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// FeedConfig converts the NATS and Stream sections into the changefeed
// package's configuration type.
func (c *Config) FeedConfig() changefeed.NATSConfig {
	fc := changefeed.DefaultNATSConfig()
	fc.URL = c.NATS.URL
	fc.StreamName = c.NATS.StreamName
	fc.DurableName = c.NATS.DurableName
	fc.QueueGroup = c.NATS.QueueGroup
	fc.MaxReconnects = c.NATS.MaxReconnects
	fc.ReconnectWait = c.NATS.ReconnectWait
	fc.AckWait = c.NATS.AckWait
	fc.MaxAge = c.NATS.MaxAge
	fc.MaxBytes = c.NATS.MaxBytes
	fc.MaxMsgs = c.NATS.MaxMsgs
	fc.CloseTimeout = c.NATS.CloseTimeout
	fc.Broker = c.BrokerConfig()
	return fc
}

// BrokerConfig converts the Stream section into the in-memory broker's
// configuration type.
func (c *Config) BrokerConfig() changefeed.BrokerConfig {
	bc := changefeed.DefaultBrokerConfig()
	if c.Stream.SubscriptionBuffer > 0 {
		bc.SubscriptionBuffer = c.Stream.SubscriptionBuffer
	}
	if c.Stream.MaxSubscribers > 0 {
		bc.MaxSubscribers = c.Stream.MaxSubscribers
	}
	return bc
}

// IsProduction reports whether the service runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}
