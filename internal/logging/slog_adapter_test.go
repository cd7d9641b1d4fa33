// Picnic Realtime - Fan Vote Propagation and Live Updates
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/picnic-realtime

package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestSlogHandlerWritesToZerolog(t *testing.T) {
	var buf bytes.Buffer
	logger := NewTestLogger(&buf)
	slogger := slog.New(NewSlogHandlerWithLogger(logger))

	slogger.Info("supervisor event", slog.String("service", "http-server"))

	out := buf.String()
	if !strings.Contains(out, `"service":"http-server"`) {
		t.Errorf("missing attr in output: %q", out)
	}
	if !strings.Contains(out, "supervisor event") {
		t.Errorf("missing message in output: %q", out)
	}
}

func TestSlogHandlerWithAttrs(t *testing.T) {
	var buf bytes.Buffer
	logger := NewTestLogger(&buf)
	h := NewSlogHandlerWithLogger(logger).WithAttrs([]slog.Attr{slog.Int("restarts", 2)})
	slogger := slog.New(h)

	slogger.Warn("service restarted")

	if !strings.Contains(buf.String(), `"restarts":2`) {
		t.Errorf("pre-configured attr missing: %q", buf.String())
	}
}

func TestSlogHandlerGroups(t *testing.T) {
	var buf bytes.Buffer
	logger := NewTestLogger(&buf)
	slogger := slog.New(NewSlogHandlerWithLogger(logger)).WithGroup("feed")

	slogger.Info("subscribed", slog.String("table", "vote_item"))

	if !strings.Contains(buf.String(), `"feed.table":"vote_item"`) {
		t.Errorf("grouped attr missing: %q", buf.String())
	}
}
