// Picnic Realtime - Fan Vote Propagation and Live Updates
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/picnic-realtime

package logging

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestRequestIDRoundTrip(t *testing.T) {
	ctx := context.Background()

	if got := RequestIDFromContext(ctx); got != "" {
		t.Errorf("expected empty request ID from bare context, got %q", got)
	}

	ctx = ContextWithRequestID(ctx, "req-123")
	if got := RequestIDFromContext(ctx); got != "req-123" {
		t.Errorf("RequestIDFromContext = %q, want req-123", got)
	}
}

func TestCorrelationIDRoundTrip(t *testing.T) {
	ctx := ContextWithCorrelationID(context.Background(), "abc12345")
	if got := CorrelationIDFromContext(ctx); got != "abc12345" {
		t.Errorf("CorrelationIDFromContext = %q, want abc12345", got)
	}
}

func TestGenerateCorrelationIDLength(t *testing.T) {
	id := GenerateCorrelationID()
	if len(id) != 8 {
		t.Errorf("correlation ID length = %d, want 8", len(id))
	}
}

func TestCtxAddsFields(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: "info", Format: "json", Output: &buf})
	defer Init(DefaultConfig())

	ctx := ContextWithRequestID(context.Background(), "req-xyz")
	ctx = ContextWithCorrelationID(ctx, "corr-1")

	Ctx(ctx).Info().Msg("with context")

	out := buf.String()
	if !strings.Contains(out, `"request_id":"req-xyz"`) {
		t.Errorf("missing request_id: %q", out)
	}
	if !strings.Contains(out, `"correlation_id":"corr-1"`) {
		t.Errorf("missing correlation_id: %q", out)
	}
}

func TestCtxWithoutIDs(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: "info", Format: "json", Output: &buf})
	defer Init(DefaultConfig())

	Ctx(context.Background()).Info().Msg("no ids")

	out := buf.String()
	if strings.Contains(out, "request_id") {
		t.Errorf("unexpected request_id field: %q", out)
	}
}
