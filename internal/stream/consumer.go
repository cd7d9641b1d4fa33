// Picnic Realtime - Fan Vote Propagation and Live Updates
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/picnic-realtime

// Package stream implements the reconnecting client side of the vote SSE
// endpoints. A Consumer owns exactly one connection per (channel, vote id)
// pair, forwards each parsed frame to a caller-supplied handler in arrival
// order, and reconnects with bounded exponential backoff when the
// transport drops.
package stream

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/goccy/go-json"

	"github.com/tomtom215/picnic-realtime/internal/logging"
)

// State is the consumer's connection state, exposed so UIs can render
// connectivity instead of guessing from frame silence.
type State int32

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateClosed:
		return "closed"
	}
	return "unknown"
}

// Envelope is one parsed SSE frame from the server.
type Envelope struct {
	Type string         `json:"type"`
	New  map[string]any `json:"new"`
	Old  map[string]any `json:"old"`
}

// ErrBadStatus wraps a non-200 response from the stream endpoint.
var ErrBadStatus = errors.New("stream: unexpected response status")

// Config configures a Consumer.
type Config struct {
	// BaseURL is the server origin, e.g. "https://picnic.example".
	BaseURL string

	// Channel is the endpoint channel segment: "vote" or "artist-vote".
	Channel string

	// VoteID scopes the stream to one vote.
	VoteID int64

	// Handler receives each frame in arrival order. Called from the
	// consumer's single goroutine; never concurrently.
	Handler func(Envelope)

	// OnStateChange, when set, observes every state transition.
	OnStateChange func(State)

	// Client defaults to a client without timeout: an SSE response is
	// expected to stay open indefinitely.
	Client *http.Client

	// InitialBackoff and MaxBackoff bound the reconnect delay.
	// Defaults: 500ms and 30s.
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
}

// Consumer maintains one live stream connection. Create with New, start
// with Start, stop with Close.
type Consumer struct {
	cfg    Config
	url    string
	client *http.Client

	state atomic.Int32

	errMu   sync.Mutex
	lastErr error

	cancel context.CancelFunc
	wg     sync.WaitGroup

	startOnce sync.Once
	closeOnce sync.Once
}

// New creates a consumer. Config.Handler is required.
func New(cfg Config) (*Consumer, error) {
	if cfg.Handler == nil {
		return nil, errors.New("stream: Handler is required")
	}
	if cfg.Channel == "" {
		return nil, errors.New("stream: Channel is required")
	}
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = 500 * time.Millisecond
	}
	if cfg.MaxBackoff <= 0 {
		cfg.MaxBackoff = 30 * time.Second
	}
	client := cfg.Client
	if client == nil {
		client = &http.Client{}
	}

	return &Consumer{
		cfg:    cfg,
		url:    fmt.Sprintf("%s/realtime/%s/%d", strings.TrimRight(cfg.BaseURL, "/"), cfg.Channel, cfg.VoteID),
		client: client,
	}, nil
}

// Start begins consuming in a background goroutine. Subsequent calls are
// no-ops.
func (c *Consumer) Start() {
	c.startOnce.Do(func() {
		ctx, cancel := context.WithCancel(context.Background())
		c.cancel = cancel
		c.wg.Add(1)
		go func() {
			defer c.wg.Done()
			c.run(ctx)
		}()
	})
}

// Close stops the consumer and waits for the run loop to exit. After Close
// returns, the handler will not be invoked again. Safe to call more than
// once, and safe to call before Start.
func (c *Consumer) Close() {
	c.closeOnce.Do(func() {
		if c.cancel != nil {
			c.cancel()
		}
		c.wg.Wait()
		c.setState(StateClosed)
	})
}

// State reports the current connection state.
func (c *Consumer) State() State {
	return State(c.state.Load())
}

// Err returns the most recent connection error, or nil. Cleared on each
// successful connect.
func (c *Consumer) Err() error {
	c.errMu.Lock()
	defer c.errMu.Unlock()
	return c.lastErr
}

func (c *Consumer) run(ctx context.Context) {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.cfg.InitialBackoff
	bo.MaxInterval = c.cfg.MaxBackoff
	bo.MaxElapsedTime = 0 // retry forever, bounded per-attempt
	bo.Reset()

	for {
		if ctx.Err() != nil {
			return
		}
		c.setState(StateConnecting)

		err := c.consume(ctx, bo)
		if ctx.Err() != nil {
			return
		}

		c.recordError(err)
		c.setState(StateDisconnected)

		var permanent *backoff.PermanentError
		if errors.As(err, &permanent) {
			logging.Error().Err(permanent.Err).Str("url", c.url).Msg("Stream failed permanently")
			return
		}

		wait := bo.NextBackOff()
		logging.Warn().
			Err(err).
			Str("url", c.url).
			Dur("retry_in", wait).
			Msg("Stream disconnected, reconnecting")

		select {
		case <-ctx.Done():
			return
		case <-time.After(wait):
		}
	}
}

// consume opens one connection and processes frames until it drops.
func (c *Consumer) consume(ctx context.Context, bo *backoff.ExponentialBackOff) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return backoff.Permanent(err)
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("%w: %d", ErrBadStatus, resp.StatusCode)
		if resp.StatusCode >= 400 && resp.StatusCode < 500 {
			// The server will keep rejecting this request; retrying is
			// pointless.
			return backoff.Permanent(err)
		}
		return err
	}

	c.recordError(nil)
	c.setState(StateConnected)
	bo.Reset()

	reader := bufio.NewReader(resp.Body)
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			return err
		}
		line = strings.TrimRight(line, "\r\n")
		if line == "" || strings.HasPrefix(line, ":") {
			// Separators and keepalive comments.
			continue
		}
		payload, ok := strings.CutPrefix(line, "data:")
		if !ok {
			// Unknown SSE field (event:, id:, retry:); not used here.
			continue
		}
		payload = strings.TrimPrefix(payload, " ")

		var env Envelope
		if err := json.Unmarshal([]byte(payload), &env); err != nil {
			// A bad frame is dropped, not fatal.
			logging.Warn().Err(err).Str("payload", payload).Msg("Dropping unparseable stream frame")
			continue
		}
		if ctx.Err() != nil {
			// Close raced the read; suppress the callback.
			return ctx.Err()
		}
		c.cfg.Handler(env)
	}
}

func (c *Consumer) setState(s State) {
	if State(c.state.Swap(int32(s))) == s {
		return
	}
	if c.cfg.OnStateChange != nil {
		c.cfg.OnStateChange(s)
	}
}

func (c *Consumer) recordError(err error) {
	c.errMu.Lock()
	c.lastErr = err
	c.errMu.Unlock()
}
