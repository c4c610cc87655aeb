// Thread - Wardrobe Outfit Recommendation Engine
// Copyright 2026 The Thread Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mdcscry/thread

package eventprocessor

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"github.com/mdcscry/thread/internal/models"
)

// sharedSubscriber keeps the in-process pub/sub open when the router
// closes its subscriber, so the consumer can be restarted against it.
type sharedSubscriber struct {
	message.Subscriber
}

func (sharedSubscriber) Close() error { return nil }

// channelTransport is a Transport over a shared gochannel.
type channelTransport struct {
	pubsub  *gochannel.GoChannel
	openErr error
	opened  *atomic.Int32
	closed  *atomic.Int32
}

func (c *channelTransport) Open(context.Context) (message.Subscriber, message.Publisher, error) {
	c.opened.Add(1)
	if c.openErr != nil {
		return nil, nil, c.openErr
	}
	return sharedSubscriber{c.pubsub}, nil, nil
}

func (c *channelTransport) Close() error {
	c.closed.Add(1)
	return nil
}

func newTestConsumer(t *testing.T, engine FeedbackEngine, openErr error) (*FeedbackConsumer, *channelTransport) {
	t.Helper()

	pubsub := gochannel.NewGoChannel(gochannel.Config{
		Persistent:          true,
		OutputChannelBuffer: 16,
	}, watermill.NopLogger{})
	t.Cleanup(func() { _ = pubsub.Close() })

	transport := &channelTransport{
		pubsub:  pubsub,
		openErr: openErr,
		opened:  &atomic.Int32{},
		closed:  &atomic.Int32{},
	}

	cfg := DefaultConfig()
	cfg.Router.RetryMaxRetries = 1
	cfg.Router.RetryInitialInterval = time.Millisecond
	cfg.Router.RetryMaxInterval = time.Millisecond
	cfg.Router.CloseTimeout = time.Second

	consumer, err := NewFeedbackConsumer(cfg, engine, func() Transport { return transport })
	if err != nil {
		t.Fatalf("NewFeedbackConsumer() error = %v", err)
	}
	return consumer, transport
}

func TestNewFeedbackConsumer_Validation(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Topic = ""
	if _, err := NewFeedbackConsumer(cfg, &mockEngine{}, nil); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("NewFeedbackConsumer() error = %v, want ErrInvalidConfig", err)
	}

	if _, err := NewFeedbackConsumer(DefaultConfig(), nil, nil); err == nil {
		t.Error("NewFeedbackConsumer() should reject a nil engine")
	}
}

func TestFeedbackConsumer_Lifecycle(t *testing.T) {
	engine := &mockEngine{}
	consumer, transport := newTestConsumer(t, engine, nil)
	pub := WrapPublisher(transport.pubsub, DefaultConfig().Topic)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if h := consumer.HealthCheck(ctx); h.Healthy {
		t.Error("HealthCheck() should be unhealthy before Start")
	}

	if err := consumer.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if !consumer.IsRunning() {
		t.Error("IsRunning() = false after Start")
	}

	first := NewSignalMessage("u1", "o1", models.SignalThumbsUp)
	if err := pub.PublishFeedback(ctx, first); err != nil {
		t.Fatalf("PublishFeedback() error = %v", err)
	}
	waitFor(t, "first event", func() bool { return consumer.Stats().Processed == 1 })

	h := consumer.HealthCheck(ctx)
	if !h.Healthy {
		t.Errorf("HealthCheck() = %+v, want healthy", h)
	}
	if h.Name != consumerHandlerName {
		t.Errorf("HealthCheck().Name = %q", h.Name)
	}

	consumer.Shutdown(context.Background())
	if consumer.IsRunning() {
		t.Error("IsRunning() = true after Shutdown")
	}
	if got := transport.closed.Load(); got != 1 {
		t.Errorf("transport closed %d times, want 1", got)
	}

	// The persistent channel replays the first event to the new
	// subscription; the handler must recognize it.
	if err := consumer.Start(ctx); err != nil {
		t.Fatalf("restart error = %v", err)
	}
	defer consumer.Shutdown(context.Background())

	if err := pub.PublishFeedback(ctx, NewWornMessage("u1", "o1")); err != nil {
		t.Fatalf("PublishFeedback() error = %v", err)
	}
	waitFor(t, "second event", func() bool { return consumer.Stats().Processed == 2 })
	waitFor(t, "replayed duplicate", func() bool { return consumer.Stats().Duplicates >= 1 })

	if got := len(engine.Calls()); got != 2 {
		t.Errorf("engine saw %d calls, want 2", got)
	}
	if got := transport.opened.Load(); got != 2 {
		t.Errorf("transport opened %d times, want 2", got)
	}
}

func TestFeedbackConsumer_StartIsIdempotent(t *testing.T) {
	consumer, transport := newTestConsumer(t, &mockEngine{}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	for i := 0; i < 2; i++ {
		if err := consumer.Start(ctx); err != nil {
			t.Fatalf("Start() #%d error = %v", i, err)
		}
	}
	defer consumer.Shutdown(context.Background())

	if got := transport.opened.Load(); got != 1 {
		t.Errorf("transport opened %d times, want 1", got)
	}
}

func TestFeedbackConsumer_OpenFailure(t *testing.T) {
	consumer, transport := newTestConsumer(t, &mockEngine{}, errors.New("nats: no servers available"))

	err := consumer.Start(context.Background())
	if err == nil {
		t.Fatal("Start() should fail when the transport cannot open")
	}
	if consumer.IsRunning() {
		t.Error("IsRunning() = true after failed Start")
	}
	if got := transport.closed.Load(); got != 1 {
		t.Errorf("transport closed %d times after failed open, want 1", got)
	}

	// Shutdown without a running pipeline is a no-op.
	consumer.Shutdown(context.Background())
}
