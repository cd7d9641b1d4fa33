// Picnic Realtime - Fan Vote Propagation and Live Updates
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/picnic-realtime

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("Server.Host = %q, want 0.0.0.0", cfg.Server.Host)
	}
	if cfg.NATS.Enabled {
		t.Error("NATS.Enabled should default to false")
	}
	if cfg.Stream.SubscriptionBuffer != 64 {
		t.Errorf("Stream.SubscriptionBuffer = %d, want 64", cfg.Stream.SubscriptionBuffer)
	}
	if cfg.Stream.Heartbeat != 30*time.Second {
		t.Errorf("Stream.Heartbeat = %v, want 30s", cfg.Stream.Heartbeat)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level = %q, want info", cfg.Logging.Level)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoadWithKoanfDefaults(t *testing.T) {
	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.NATS.StreamName != "CHANGES" {
		t.Errorf("NATS.StreamName = %q, want CHANGES", cfg.NATS.StreamName)
	}
}

func TestLoadWithKoanfEnvOverrides(t *testing.T) {
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("STREAM_HEARTBEAT", "15s")
	t.Setenv("NATS_URL", "nats://nats.internal:4222")
	t.Setenv("CORS_ORIGINS", "https://picnic.example, https://admin.picnic.example")

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error: %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
	if cfg.Stream.Heartbeat != 15*time.Second {
		t.Errorf("Stream.Heartbeat = %v, want 15s", cfg.Stream.Heartbeat)
	}
	if cfg.NATS.URL != "nats://nats.internal:4222" {
		t.Errorf("NATS.URL = %q", cfg.NATS.URL)
	}
	want := []string{"https://picnic.example", "https://admin.picnic.example"}
	if len(cfg.Security.CORSOrigins) != len(want) {
		t.Fatalf("CORSOrigins = %v, want %v", cfg.Security.CORSOrigins, want)
	}
	for i, origin := range want {
		if cfg.Security.CORSOrigins[i] != origin {
			t.Errorf("CORSOrigins[%d] = %q, want %q", i, cfg.Security.CORSOrigins[i], origin)
		}
	}
}

func TestLoadWithKoanfConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := strings.Join([]string{
		"server:",
		"  port: 3000",
		"  environment: development",
		"logging:",
		"  level: warn",
	}, "\n")
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatalf("write config file: %v", err)
	}
	t.Setenv(ConfigPathEnvVar, path)

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error: %v", err)
	}
	if cfg.Server.Port != 3000 {
		t.Errorf("Server.Port = %d, want 3000 from file", cfg.Server.Port)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("Logging.Level = %q, want warn from file", cfg.Logging.Level)
	}

	// Env still wins over the file.
	t.Setenv("HTTP_PORT", "4000")
	cfg, err = LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error: %v", err)
	}
	if cfg.Server.Port != 4000 {
		t.Errorf("Server.Port = %d, want 4000 from env", cfg.Server.Port)
	}
}

func TestEnvTransformFunc(t *testing.T) {
	tests := []struct {
		env  string
		want string
	}{
		{"HTTP_PORT", "server.port"},
		{"HTTP_HOST", "server.host"},
		{"ENVIRONMENT", "server.environment"},
		{"NATS_ENABLED", "nats.enabled"},
		{"NATS_EMBEDDED", "nats.embedded_server"},
		{"STREAM_BUFFER", "stream.subscription_buffer"},
		{"LOG_LEVEL", "logging.level"},
		{"CORS_ORIGINS", "security.cors_origins"},
		{"PATH", ""},
		{"HOME", ""},
		{"RANDOM_UNRELATED_VAR", ""},
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			if got := envTransformFunc(tt.env); got != tt.want {
				t.Errorf("envTransformFunc(%q) = %q, want %q", tt.env, got, tt.want)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "valid defaults",
			mutate: func(*Config) {},
		},
		{
			name:    "port too low",
			mutate:  func(c *Config) { c.Server.Port = 0 },
			wantErr: "HTTP_PORT",
		},
		{
			name:    "port too high",
			mutate:  func(c *Config) { c.Server.Port = 70000 },
			wantErr: "HTTP_PORT",
		},
		{
			name:    "bad environment",
			mutate:  func(c *Config) { c.Server.Environment = "staging" },
			wantErr: "ENVIRONMENT",
		},
		{
			name: "nats enabled without url",
			mutate: func(c *Config) {
				c.NATS.Enabled = true
				c.NATS.EmbeddedServer = false
				c.NATS.URL = ""
			},
			wantErr: "NATS_URL",
		},
		{
			name: "nats bad scheme",
			mutate: func(c *Config) {
				c.NATS.Enabled = true
				c.NATS.EmbeddedServer = false
				c.NATS.URL = "http://localhost:4222"
			},
			wantErr: "NATS_URL",
		},
		{
			name: "nats embedded without store dir",
			mutate: func(c *Config) {
				c.NATS.Enabled = true
				c.NATS.StoreDir = ""
			},
			wantErr: "NATS_STORE_DIR",
		},
		{
			name:    "zero stream buffer",
			mutate:  func(c *Config) { c.Stream.SubscriptionBuffer = 0 },
			wantErr: "STREAM_BUFFER",
		},
		{
			name:    "zero heartbeat",
			mutate:  func(c *Config) { c.Stream.Heartbeat = 0 },
			wantErr: "STREAM_HEARTBEAT",
		},
		{
			name:    "zero rate limit",
			mutate:  func(c *Config) { c.Security.RateLimitReqs = 0 },
			wantErr: "RATE_LIMIT_REQUESTS",
		},
		{
			name: "rate limit ignored when disabled",
			mutate: func(c *Config) {
				c.Security.RateLimitDisabled = true
				c.Security.RateLimitReqs = 0
			},
		},
		{
			name:    "empty cors origins",
			mutate:  func(c *Config) { c.Security.CORSOrigins = nil },
			wantErr: "CORS_ORIGINS",
		},
		{
			name: "wildcard cors in production",
			mutate: func(c *Config) {
				c.Server.Environment = "production"
				c.Security.CORSOrigins = []string{"*"}
			},
			wantErr: "CORS_ORIGINS",
		},
		{
			name: "pinned cors in production",
			mutate: func(c *Config) {
				c.Server.Environment = "production"
				c.Security.CORSOrigins = []string{"https://picnic.example"}
			},
		},
		{
			name:    "bad log level",
			mutate:  func(c *Config) { c.Logging.Level = "verbose" },
			wantErr: "LOG_LEVEL",
		},
		{
			name:    "bad log format",
			mutate:  func(c *Config) { c.Logging.Format = "xml" },
			wantErr: "LOG_FORMAT",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() expected error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %q, want substring %q", err, tt.wantErr)
			}
		})
	}
}

func TestFeedConfigConversion(t *testing.T) {
	cfg := defaultConfig()
	cfg.NATS.StreamName = "PICNIC"
	cfg.NATS.DurableName = "edge-1"
	cfg.Stream.SubscriptionBuffer = 128
	cfg.Stream.MaxSubscribers = 500

	fc := cfg.FeedConfig()
	if fc.StreamName != "PICNIC" {
		t.Errorf("StreamName = %q, want PICNIC", fc.StreamName)
	}
	if fc.DurableName != "edge-1" {
		t.Errorf("DurableName = %q, want edge-1", fc.DurableName)
	}
	if fc.Broker.SubscriptionBuffer != 128 {
		t.Errorf("Broker.SubscriptionBuffer = %d, want 128", fc.Broker.SubscriptionBuffer)
	}
	if fc.Broker.MaxSubscribers != 500 {
		t.Errorf("Broker.MaxSubscribers = %d, want 500", fc.Broker.MaxSubscribers)
	}
}

func TestBrokerConfigZeroValuesFallBack(t *testing.T) {
	cfg := defaultConfig()
	cfg.Stream.SubscriptionBuffer = 0
	cfg.Stream.MaxSubscribers = 0

	bc := cfg.BrokerConfig()
	if bc.SubscriptionBuffer < 1 {
		t.Errorf("SubscriptionBuffer = %d, want broker default", bc.SubscriptionBuffer)
	}
	if bc.MaxSubscribers < 1 {
		t.Errorf("MaxSubscribers = %d, want broker default", bc.MaxSubscribers)
	}
}
