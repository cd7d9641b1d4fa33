// Picnic Realtime - Fan Vote Propagation and Live Updates
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/picnic-realtime

/*
Package config provides centralized configuration management for the
realtime service.

Configuration is loaded with Koanf v2 from three layered sources, in
ascending priority:

  - Built-in defaults (defaultConfig)
  - An optional YAML config file (CONFIG_PATH or DefaultConfigPaths)
  - Environment variables (envTransformFunc maps the supported names)

# Configuration Structure

The package organizes configuration into logical groups:

  - ServerConfig: HTTP server settings (host, port, timeouts, environment)
  - NATSConfig: JetStream-backed change feed (optional, nats build tag)
  - StreamConfig: In-process broker and SSE tuning
  - SecurityConfig: CORS origins, rate limiting, trusted proxies
  - LoggingConfig: Log level, format, caller reporting

# Environment Variables

HTTP Server (ServerConfig):
  - HTTP_HOST: Bind address (default: 0.0.0.0)
  - HTTP_PORT: Listen port (default: 8080)
  - HTTP_TIMEOUT: Request read timeout (default: 30s)
  - HTTP_SHUTDOWN_TIMEOUT: Drain window on shutdown (default: 10s)
  - ENVIRONMENT: development or production (default: development)

Change Feed (NATSConfig):
  - NATS_ENABLED: Use JetStream instead of the in-memory broker (default: false)
  - NATS_URL: Server URL when not embedded (default: nats://127.0.0.1:4222)
  - NATS_EMBEDDED: Run nats-server in-process (default: true)
  - NATS_STORE_DIR: JetStream storage directory (default: /data/nats/jetstream)
  - NATS_STREAM_NAME, NATS_DURABLE_NAME, NATS_QUEUE_GROUP
  - NATS_MAX_RECONNECTS, NATS_RECONNECT_WAIT, NATS_ACK_WAIT
  - NATS_MAX_AGE, NATS_MAX_BYTES, NATS_MAX_MSGS, NATS_CLOSE_TIMEOUT

Streaming (StreamConfig):
  - STREAM_BUFFER: Per-subscriber buffer before drops (default: 64)
  - STREAM_MAX_SUBSCRIBERS: Concurrent subscription cap (default: 10000)
  - STREAM_HEARTBEAT: SSE keep-alive comment interval (default: 30s)

Security (SecurityConfig):
  - CORS_ORIGINS: Comma-separated allowed origins (default: *)
  - RATE_LIMIT_REQUESTS, RATE_LIMIT_WINDOW, DISABLE_RATE_LIMIT
  - TRUSTED_PROXIES: Comma-separated proxy IPs for client address resolution

Logging (LoggingConfig):
  - LOG_LEVEL: trace, debug, info, warn, error, fatal, panic, disabled
  - LOG_FORMAT: json or console
  - LOG_CALLER: Include file:line in log events

Validation runs after unmarshaling; production mode additionally rejects
wildcard CORS origins.
*/
package config
