// Thread - Wardrobe Outfit Recommendation Engine
// Copyright 2026 The Thread Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mdcscry/thread

package eventprocessor

import (
	"context"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	wmNats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	natsgo "github.com/nats-io/nats.go"

	"github.com/mdcscry/thread/internal/logging"
)

var _ message.Subscriber = (*Subscriber)(nil)

// Subscriber is the durable JetStream subscriber feeding the feedback router.
//
// The durable consumer starts from the beginning of the stream the first
// time it is created, so feedback published before the daemon ever ran is
// still applied. Afterwards JetStream resumes from the last acknowledged
// message.
type Subscriber struct {
	message.Subscriber
	durable string
}

// NewSubscriber creates the durable feedback subscriber.
func NewSubscriber(cfg *SubscriberConfig, logger watermill.LoggerAdapter) (*Subscriber, error) {
	if cfg == nil {
		return nil, fmt.Errorf("%w: subscriber config required", ErrInvalidConfig)
	}
	if cfg.DurableName == "" {
		return nil, fmt.Errorf("%w: durable name required", ErrInvalidConfig)
	}
	if logger == nil {
		logger = watermill.NewSlogLogger(logging.NewSlogLogger())
	}

	bound := cfg.StreamName != ""
	sub, err := wmNats.NewSubscriber(wmNats.SubscriberConfig{
		URL:              cfg.URL,
		QueueGroupPrefix: cfg.QueueGroup,
		SubscribersCount: cfg.SubscribersCount,
		AckWaitTimeout:   cfg.AckWaitTimeout,
		CloseTimeout:     cfg.CloseTimeout,
		NatsOptions:      natsConnOptions("thread-feedback-consumer", cfg.MaxReconnects, cfg.ReconnectWait),
		Unmarshaler:      &wmNats.NATSMarshaler{},
		JetStream: wmNats.JetStreamConfig{
			// The stream is provisioned by StreamInitializer; wildcard
			// subjects cannot be auto-provisioned per topic.
			AutoProvision:    !bound,
			SubscribeOptions: consumerOptions(cfg),
			DurablePrefix:    cfg.DurableName,
		},
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("create feedback subscriber: %w", err)
	}

	return &Subscriber{Subscriber: sub, durable: cfg.DurableName}, nil
}

// Subscribe starts consuming topic.
func (s *Subscriber) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	ch, err := s.Subscriber.Subscribe(ctx, topic)
	if err != nil {
		return nil, fmt.Errorf("subscribe %s as %s: %w", topic, s.durable, err)
	}
	return ch, nil
}

// natsConnOptions keeps a connection retrying through broker restarts and
// logs disconnects. maxReconnects of -1 retries forever.
func natsConnOptions(name string, maxReconnects int, wait time.Duration) []natsgo.Option {
	return []natsgo.Option{
		natsgo.Name(name),
		natsgo.RetryOnFailedConnect(true),
		natsgo.MaxReconnects(maxReconnects),
		natsgo.ReconnectWait(wait),
		natsgo.DisconnectErrHandler(func(_ *natsgo.Conn, err error) {
			if err != nil {
				logging.Warn().Err(err).Str("connection", name).Msg("NATS disconnected")
			}
		}),
		natsgo.ReconnectHandler(func(nc *natsgo.Conn) {
			logging.Info().Str("connection", name).Str("url", nc.ConnectedUrl()).Msg("NATS reconnected")
		}),
	}
}

// consumerOptions configures the JetStream consumer. Delivery is explicit
// ack; a message is redelivered at most MaxDeliver times before JetStream
// gives up on it.
func consumerOptions(cfg *SubscriberConfig) []natsgo.SubOpt {
	opts := []natsgo.SubOpt{
		natsgo.DeliverAll(),
		natsgo.AckExplicit(),
		natsgo.MaxDeliver(cfg.MaxDeliver),
		natsgo.MaxAckPending(cfg.MaxAckPending),
		natsgo.AckWait(cfg.AckWaitTimeout),
	}
	if cfg.StreamName != "" {
		opts = append(opts, natsgo.BindStream(cfg.StreamName))
	}
	return opts
}
