// Picnic Realtime - Fan Vote Propagation and Live Updates
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/picnic-realtime

package realtime

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrStreamingUnsupported is returned when the ResponseWriter cannot flush,
// which makes SSE impossible (typically a misconfigured proxy or test double).
var ErrStreamingUnsupported = errors.New("realtime: response writer does not support streaming")

// streamWriter writes SSE data frames and flushes each one immediately.
// Any buffering between the handler and the client defeats live delivery.
type streamWriter struct {
	w       http.ResponseWriter
	flusher http.Flusher
}

// newStreamWriter sets the SSE response headers and sends the status line.
// After this point the response is committed; errors can only end the stream.
func newStreamWriter(w http.ResponseWriter) (*streamWriter, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, ErrStreamingUnsupported
	}

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache, no-transform")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	return &streamWriter{w: w, flusher: flusher}, nil
}

// WriteFrame writes one `data: <json>\n\n` frame and flushes it.
func (s *streamWriter) WriteFrame(env Envelope) error {
	body, err := env.Encode()
	if err != nil {
		return fmt.Errorf("realtime: encode envelope: %w", err)
	}
	if _, err := fmt.Fprintf(s.w, "data: %s\n\n", body); err != nil {
		return fmt.Errorf("realtime: write frame: %w", err)
	}
	s.flusher.Flush()
	return nil
}

// WriteComment writes an SSE comment line, used as a keepalive that clients
// ignore.
func (s *streamWriter) WriteComment(text string) error {
	if _, err := fmt.Fprintf(s.w, ": %s\n\n", text); err != nil {
		return fmt.Errorf("realtime: write comment: %w", err)
	}
	s.flusher.Flush()
	return nil
}
