// Thread - Wardrobe Outfit Recommendation Engine
// Copyright 2026 The Thread Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mdcscry/thread

package eventprocessor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	wmNats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	natsgo "github.com/nats-io/nats.go"

	"github.com/mdcscry/thread/internal/metrics"
)

// Publisher sends feedback messages. The consumer uses it for the poison
// topic and producers use PublishFeedback to emit feedback events.
type Publisher struct {
	mu      sync.RWMutex
	out     message.Publisher
	breaker *Breaker
	topic   string
	closed  bool
}

// NewPublisher connects a JetStream publisher whose default topic is topic.
// The stream must already exist.
func NewPublisher(cfg PublisherConfig, topic string, logger watermill.LoggerAdapter) (*Publisher, error) {
	if logger == nil {
		logger = watermill.NopLogger{}
	}

	opts := natsConnOptions("thread-feedback-publisher", cfg.MaxReconnects, cfg.ReconnectWait)
	opts = append(opts, natsgo.ReconnectBufSize(cfg.ReconnectBuffer))

	out, err := wmNats.NewPublisher(wmNats.PublisherConfig{
		URL:         cfg.URL,
		NatsOptions: opts,
		Marshaler:   &wmNats.NATSMarshaler{},
		JetStream: wmNats.JetStreamConfig{
			TrackMsgId: cfg.EnableTrackMsgID,
			PublishOptions: []natsgo.PubOpt{
				natsgo.RetryAttempts(3),
				natsgo.RetryWait(100 * time.Millisecond),
			},
		},
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("create feedback publisher: %w", err)
	}
	return WrapPublisher(out, topic), nil
}

// WrapPublisher uses out as the transport. Tests pass an in-process pub/sub.
func WrapPublisher(out message.Publisher, topic string) *Publisher {
	return &Publisher{out: out, topic: topic}
}

// SetCircuitBreaker routes every later publish through cb.
func (p *Publisher) SetCircuitBreaker(cb *Breaker) {
	p.mu.Lock()
	p.breaker = cb
	p.mu.Unlock()
}

// Publish sends msg to topic. Nats-Msg-Id defaults to the message UUID so
// JetStream drops a republish of the same event inside its duplicate window.
func (p *Publisher) Publish(ctx context.Context, topic string, msg *message.Message) error {
	p.mu.RLock()
	closed, cb := p.closed, p.breaker
	p.mu.RUnlock()
	if closed {
		return ErrPublisherClosed
	}

	if msg.Metadata.Get(natsgo.MsgIdHdr) == "" {
		msg.Metadata.Set(natsgo.MsgIdHdr, msg.UUID)
	}
	msg.SetContext(ctx)

	send := func() (struct{}, error) {
		return struct{}{}, p.out.Publish(topic, msg)
	}
	var err error
	if cb == nil {
		_, err = send()
	} else {
		_, err = cb.Execute(send)
	}
	if err != nil {
		return err
	}
	metrics.RecordNATSPublish()
	return nil
}

// PublishFeedback validates fb and publishes it on the default topic. The
// event id becomes the message UUID, and kind and user id are copied into
// metadata for routing without decoding the payload.
func (p *Publisher) PublishFeedback(ctx context.Context, fb *FeedbackMessage) error {
	payload, err := fb.Marshal()
	if err != nil {
		return err
	}
	msg := message.NewMessage(fb.EventID, payload)
	msg.Metadata.Set("kind", fb.Kind)
	msg.Metadata.Set("user_id", fb.UserID)

	if err := p.Publish(ctx, p.topic, msg); err != nil {
		return fmt.Errorf("publish feedback %s: %w", fb.EventID, err)
	}
	return nil
}

// Close closes the transport. Later publishes fail with ErrPublisherClosed.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	return p.out.Close()
}

// Guarded adapts p to message.Publisher for the poison queue middleware,
// keeping the breaker and message id handling in the path.
func (p *Publisher) Guarded() message.Publisher {
	return guardedPublisher{p}
}

type guardedPublisher struct{ p *Publisher }

func (g guardedPublisher) Publish(topic string, msgs ...*message.Message) error {
	for _, msg := range msgs {
		if err := g.p.Publish(msg.Context(), topic, msg); err != nil {
			return err
		}
	}
	return nil
}

func (g guardedPublisher) Close() error { return g.p.Close() }
