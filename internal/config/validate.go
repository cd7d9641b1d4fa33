// Picnic Realtime - Fan Vote Propagation and Live Updates
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/picnic-realtime

package config

import (
	"fmt"
	"net/url"
)

// Validate checks that required configuration is present and valid
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}

	if err := c.validateNATS(); err != nil {
		return err
	}

	if err := c.validateStream(); err != nil {
		return err
	}

	if err := c.validateSecurity(); err != nil {
		return err
	}

	return c.validateLogging()
}

// validateServer validates HTTP server configuration
func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive")
	}
	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("HTTP_SHUTDOWN_TIMEOUT must be positive")
	}
	switch c.Server.Environment {
	case "development", "production":
		return nil
	default:
		return fmt.Errorf("ENVIRONMENT must be development or production, got %q", c.Server.Environment)
	}
}

// validateNATS validates NATS configuration (only if enabled)
func (c *Config) validateNATS() error {
	if !c.NATS.Enabled {
		return nil // In-memory broker needs no NATS settings
	}
	if !c.NATS.EmbeddedServer {
		if c.NATS.URL == "" {
			return fmt.Errorf("NATS_URL is required when NATS_ENABLED=true and NATS_EMBEDDED=false")
		}
		u, err := url.Parse(c.NATS.URL)
		if err != nil || u.Scheme != "nats" || u.Host == "" {
			return fmt.Errorf("NATS_URL must be a nats:// URL, got %q", c.NATS.URL)
		}
	}
	if c.NATS.EmbeddedServer && c.NATS.StoreDir == "" {
		return fmt.Errorf("NATS_STORE_DIR is required when NATS_EMBEDDED=true")
	}
	if c.NATS.StreamName == "" {
		return fmt.Errorf("NATS_STREAM_NAME must not be empty")
	}
	if c.NATS.DurableName == "" {
		return fmt.Errorf("NATS_DURABLE_NAME must not be empty")
	}
	return nil
}

// validateStream validates fan-out and SSE tuning
func (c *Config) validateStream() error {
	if c.Stream.SubscriptionBuffer < 1 {
		return fmt.Errorf("STREAM_BUFFER must be at least 1, got %d", c.Stream.SubscriptionBuffer)
	}
	if c.Stream.MaxSubscribers < 1 {
		return fmt.Errorf("STREAM_MAX_SUBSCRIBERS must be at least 1, got %d", c.Stream.MaxSubscribers)
	}
	if c.Stream.Heartbeat <= 0 {
		return fmt.Errorf("STREAM_HEARTBEAT must be positive")
	}
	return nil
}

// validateSecurity validates CORS and rate limiting configuration
func (c *Config) validateSecurity() error {
	if !c.Security.RateLimitDisabled {
		if c.Security.RateLimitReqs < 1 {
			return fmt.Errorf("RATE_LIMIT_REQUESTS must be at least 1, got %d", c.Security.RateLimitReqs)
		}
		if c.Security.RateLimitWindow <= 0 {
			return fmt.Errorf("RATE_LIMIT_WINDOW must be positive")
		}
	}
	if len(c.Security.CORSOrigins) == 0 {
		return fmt.Errorf("CORS_ORIGINS must not be empty (use * to allow all origins)")
	}
	// Production deployments must pin origins; a wildcard defeats the
	// point of CORS for authenticated frontends.
	if c.IsProduction() {
		for _, origin := range c.Security.CORSOrigins {
			if origin == "*" {
				return fmt.Errorf("CORS_ORIGINS must not contain * when ENVIRONMENT=production")
			}
		}
	}
	return nil
}

// validateLogging validates logging configuration
func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "trace", "debug", "info", "warn", "error", "fatal", "panic", "disabled":
	default:
		return fmt.Errorf("LOG_LEVEL must be one of trace, debug, info, warn, error, fatal, panic, disabled; got %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "json", "console":
		return nil
	default:
		return fmt.Errorf("LOG_FORMAT must be json or console, got %q", c.Logging.Format)
	}
}
