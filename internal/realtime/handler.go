// Picnic Realtime - Fan Vote Propagation and Live Updates
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/picnic-realtime

package realtime

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/picnic-realtime/internal/changefeed"
	"github.com/tomtom215/picnic-realtime/internal/logging"
	"github.com/tomtom215/picnic-realtime/internal/metrics"
)

// DefaultHeartbeatInterval is how often an idle stream emits a comment
// frame so intermediaries do not reap the connection.
const DefaultHeartbeatInterval = 30 * time.Second

// Handler serves the two SSE endpoints. One feed subscription is opened
// per connection and torn down when the client goes away.
type Handler struct {
	feed      changefeed.Feed
	heartbeat time.Duration
}

// Option configures a Handler.
type Option func(*Handler)

// WithHeartbeat overrides the keepalive interval. Zero disables keepalives.
func WithHeartbeat(d time.Duration) Option {
	return func(h *Handler) { h.heartbeat = d }
}

// NewHandler creates the stream handler on top of feed.
func NewHandler(feed changefeed.Feed, opts ...Option) *Handler {
	h := &Handler{
		feed:      feed,
		heartbeat: DefaultHeartbeatInterval,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// VoteStream handles GET /realtime/vote/{voteId}.
func (h *Handler) VoteStream(w http.ResponseWriter, r *http.Request) {
	h.stream(w, r, ChannelVote)
}

// ArtistVoteStream handles GET /realtime/artist-vote/{voteId}.
func (h *Handler) ArtistVoteStream(w http.ResponseWriter, r *http.Request) {
	h.stream(w, r, ChannelArtistVote)
}

func (h *Handler) stream(w http.ResponseWriter, r *http.Request, channel Channel) {
	ctx := r.Context()
	log := logging.Ctx(ctx)

	voteID, err := strconv.ParseInt(chi.URLParam(r, "voteId"), 10, 64)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid voteId")
		return
	}

	watches, err := channel.WatchSet(voteID)
	if err != nil {
		writeJSONError(w, http.StatusNotFound, "Unknown channel")
		return
	}

	sub, err := h.feed.Subscribe(ctx, watches...)
	if err != nil {
		log.Error().Err(err).
			Str("channel", channel.String()).
			Int64("vote_id", voteID).
			Msg("Change feed subscription failed")
		writeJSONError(w, http.StatusServiceUnavailable, "Stream unavailable")
		return
	}
	defer sub.Unsubscribe()

	sw, err := newStreamWriter(w)
	if err != nil {
		log.Error().Err(err).Msg("SSE not supported by response writer")
		writeJSONError(w, http.StatusInternalServerError, "Streaming unsupported")
		return
	}

	metrics.TrackActiveStream(channel.String(), true)
	defer metrics.TrackActiveStream(channel.String(), false)

	log.Debug().
		Str("channel", channel.String()).
		Int64("vote_id", voteID).
		Msg("Stream opened")

	var keepalive *time.Ticker
	var keepaliveC <-chan time.Time
	if h.heartbeat > 0 {
		keepalive = time.NewTicker(h.heartbeat)
		defer keepalive.Stop()
		keepaliveC = keepalive.C
	}

	for {
		select {
		case <-ctx.Done():
			// Client abort: the deferred Unsubscribe releases the feed.
			log.Debug().
				Str("channel", channel.String()).
				Int64("vote_id", voteID).
				Msg("Stream closed by client")
			return

		case event, ok := <-sub.Events():
			if !ok {
				// Feed shut down; the client reconnects on its own.
				log.Debug().
					Str("channel", channel.String()).
					Int64("vote_id", voteID).
					Msg("Stream closed by feed")
				return
			}
			if err := sw.WriteFrame(NewEnvelope(event)); err != nil {
				metrics.StreamWriteErrors.WithLabelValues(channel.String()).Inc()
				log.Debug().Err(err).Msg("Frame write failed, ending stream")
				return
			}
			metrics.RecordStreamFrame(channel.String(), string(event.Table))

		case <-keepaliveC:
			if err := sw.WriteComment("keepalive"); err != nil {
				metrics.StreamWriteErrors.WithLabelValues(channel.String()).Inc()
				return
			}
		}
	}
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write([]byte(`{"error": "` + msg + `"}`))
}
