// Picnic Realtime - Fan Vote Propagation and Live Updates
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/picnic-realtime

//go:build !nats

package main

import (
	"context"
	"io"
	"testing"

	"github.com/tomtom215/picnic-realtime/internal/config"
	"github.com/tomtom215/picnic-realtime/internal/logging"
)

func init() {
	logging.Init(logging.Config{Level: "disabled", Output: io.Discard})
}

func TestInitFeedMemoryMode(t *testing.T) {
	cfg, err := config.LoadWithKoanf()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	components, err := initFeed(context.Background(), cfg)
	if err != nil {
		t.Fatalf("initFeed() error = %v", err)
	}
	defer components.Close()

	if components.Feed() == nil {
		t.Error("Feed() = nil")
	}
	if components.Publisher() == nil {
		t.Error("Publisher() = nil")
	}
	if components.Runner() != nil {
		t.Error("Runner() should be nil for the in-memory broker")
	}
}

func TestInitFeedIgnoresNATSWithoutTag(t *testing.T) {
	cfg, err := config.LoadWithKoanf()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	cfg.NATS.Enabled = false

	components, err := initFeed(context.Background(), cfg)
	if err != nil {
		t.Fatalf("initFeed() error = %v", err)
	}
	defer components.Close()

	// Publish/subscribe through the returned pair works end to end.
	sub, err := components.Feed().Subscribe(context.Background())
	if err == nil {
		sub.Unsubscribe()
		t.Fatal("Subscribe() with no filters should fail")
	}
}
