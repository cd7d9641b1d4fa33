// Picnic Realtime - Fan Vote Propagation and Live Updates
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/picnic-realtime

//go:build nats

package changefeed

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	wmNats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	natsgo "github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/tomtom215/picnic-realtime/internal/logging"
	"github.com/tomtom215/picnic-realtime/internal/metrics"
)

// NATSFeed consumes the CHANGES stream and fans events out to local
// subscriptions through an embedded Broker. The broker stage keeps the
// Subscribe semantics identical to the single-node deployment: one durable
// JetStream consumer per process feeds any number of SSE connections.
type NATSFeed struct {
	broker     *Broker
	subscriber message.Subscriber
	serializer Serializer
	cfg        NATSConfig

	mu     sync.Mutex
	closed bool
}

// NewNATSFeed creates the feed. Call Run to start consuming.
func NewNATSFeed(cfg NATSConfig, logger watermill.LoggerAdapter) (*NATSFeed, error) {
	if logger == nil {
		logger = watermill.NewStdLogger(false, false)
	}

	natsOpts := []natsgo.Option{
		natsgo.RetryOnFailedConnect(true),
		natsgo.MaxReconnects(cfg.MaxReconnects),
		natsgo.ReconnectWait(cfg.ReconnectWait),
		natsgo.DisconnectErrHandler(func(nc *natsgo.Conn, err error) {
			if err != nil {
				logger.Error("NATS disconnected", err, nil)
			}
		}),
		natsgo.ReconnectHandler(func(nc *natsgo.Conn) {
			logger.Info("NATS reconnected", watermill.LogFields{
				"url": nc.ConnectedUrl(),
			})
		}),
	}

	subOpts := []natsgo.SubOpt{
		natsgo.AckWait(cfg.AckWait),
		// Live vote streams only care about new changes.
		natsgo.DeliverNew(),
	}

	wmConfig := wmNats.SubscriberConfig{
		URL:         cfg.URL,
		NatsOptions: natsOpts,
		Unmarshaler: &wmNats.NATSMarshaler{},
		JetStream: wmNats.JetStreamConfig{
			Disabled:         false,
			AutoProvision:    false, // Stream is pre-created by EnsureStream
			DurablePrefix:    cfg.DurableName,
			SubscribeOptions: subOpts,
		},
		QueueGroupPrefix: cfg.QueueGroup,
		CloseTimeout:     cfg.CloseTimeout,
		AckWaitTimeout:   cfg.AckWait,
	}

	sub, err := wmNats.NewSubscriber(wmConfig, logger)
	if err != nil {
		return nil, fmt.Errorf("changefeed: create NATS subscriber: %w", err)
	}

	return &NATSFeed{
		broker:     NewBroker(cfg.Broker),
		subscriber: sub,
		cfg:        cfg,
	}, nil
}

// Run consumes every per-table subject until ctx is cancelled. Blocks.
func (f *NATSFeed) Run(ctx context.Context) error {
	var wg sync.WaitGroup
	for _, table := range Tables {
		messages, err := f.subscriber.Subscribe(ctx, TopicFor(table))
		if err != nil {
			return fmt.Errorf("changefeed: subscribe %s: %w", TopicFor(table), err)
		}
		wg.Add(1)
		go func(table Table, messages <-chan *message.Message) {
			defer wg.Done()
			f.consume(ctx, table, messages)
		}(table, messages)
	}
	wg.Wait()
	return ctx.Err()
}

func (f *NATSFeed) consume(ctx context.Context, table Table, messages <-chan *message.Message) {
	for msg := range messages {
		metrics.RecordNATSConsume()

		event, err := f.serializer.Unmarshal(msg.Payload)
		if err != nil {
			metrics.RecordNATSParseFailed()
			logging.Error().
				Err(err).
				Str("table", string(table)).
				Str("message_id", msg.UUID).
				Msg("Discarding unparseable change message")
			// Ack: a message that cannot parse will never parse.
			msg.Ack()
			continue
		}

		if err := f.broker.Publish(ctx, event); err != nil {
			logging.Error().Err(err).Msg("Local fan-out failed")
			msg.Nack()
			continue
		}
		msg.Ack()
	}
}

// Subscribe registers a local consumer. See Broker.Subscribe.
func (f *NATSFeed) Subscribe(ctx context.Context, filters ...Filter) (Subscription, error) {
	return f.broker.Subscribe(ctx, filters...)
}

// Close stops consumption and closes all local subscriptions.
func (f *NATSFeed) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return nil
	}
	f.closed = true
	err := f.subscriber.Close()
	f.broker.Close()
	return err
}

// NATSPublisher publishes change events to the per-table subjects.
// Used by the ingest endpoint when the deployment runs on NATS.
type NATSPublisher struct {
	publisher  message.Publisher
	serializer Serializer
}

// NewNATSPublisher creates a JetStream publisher.
func NewNATSPublisher(cfg NATSConfig, logger watermill.LoggerAdapter) (*NATSPublisher, error) {
	if logger == nil {
		logger = watermill.NewStdLogger(false, false)
	}

	natsOpts := []natsgo.Option{
		natsgo.RetryOnFailedConnect(true),
		natsgo.MaxReconnects(cfg.MaxReconnects),
		natsgo.ReconnectWait(cfg.ReconnectWait),
	}

	wmConfig := wmNats.PublisherConfig{
		URL:         cfg.URL,
		NatsOptions: natsOpts,
		Marshaler:   &wmNats.NATSMarshaler{},
		JetStream: wmNats.JetStreamConfig{
			Disabled:      false,
			AutoProvision: false,
			TrackMsgId:    true, // Deduplicate on event ID
			PublishOptions: []natsgo.PubOpt{
				natsgo.RetryAttempts(3),
				natsgo.RetryWait(100 * time.Millisecond),
			},
		},
	}

	pub, err := wmNats.NewPublisher(wmConfig, logger)
	if err != nil {
		return nil, fmt.Errorf("changefeed: create NATS publisher: %w", err)
	}

	return &NATSPublisher{publisher: pub}, nil
}

// Publish validates and publishes event to its per-table subject.
func (p *NATSPublisher) Publish(ctx context.Context, event ChangeEvent) error {
	if err := event.Validate(); err != nil {
		return err
	}
	payload, err := p.serializer.Marshal(event)
	if err != nil {
		return fmt.Errorf("changefeed: encode event: %w", err)
	}

	msg := message.NewMessage(event.ID, payload)
	msg.SetContext(ctx)
	if err := p.publisher.Publish(event.Topic(), msg); err != nil {
		return fmt.Errorf("changefeed: publish to %s: %w", event.Topic(), err)
	}
	metrics.RecordNATSPublish()
	return nil
}

// Close releases the underlying connection.
func (p *NATSPublisher) Close() error {
	return p.publisher.Close()
}

// EnsureStream creates or updates the CHANGES stream. Idempotent; call
// before starting feeds or publishers.
func EnsureStream(ctx context.Context, nc *natsgo.Conn, cfg NATSConfig) error {
	js, err := jetstream.New(nc)
	if err != nil {
		return fmt.Errorf("changefeed: create JetStream context: %w", err)
	}

	streamCfg := jetstream.StreamConfig{
		Name:        cfg.StreamName,
		Subjects:    []string{TopicWildcard},
		Retention:   jetstream.LimitsPolicy,
		MaxAge:      cfg.MaxAge,
		MaxBytes:    cfg.MaxBytes,
		MaxMsgs:     cfg.MaxMsgs,
		Storage:     jetstream.FileStorage,
		Discard:     jetstream.DiscardOld,
		AllowDirect: true,
	}

	if _, err := js.Stream(ctx, cfg.StreamName); err != nil {
		if _, err := js.CreateStream(ctx, streamCfg); err != nil {
			return fmt.Errorf("changefeed: create stream %s: %w", cfg.StreamName, err)
		}
		return nil
	}
	if _, err := js.UpdateStream(ctx, streamCfg); err != nil {
		return fmt.Errorf("changefeed: update stream %s: %w", cfg.StreamName, err)
	}
	return nil
}
