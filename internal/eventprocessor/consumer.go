// Thread - Wardrobe Outfit Recommendation Engine
// Copyright 2026 The Thread Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mdcscry/thread

package eventprocessor

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	natsgo "github.com/nats-io/nats.go"

	"github.com/mdcscry/thread/internal/logging"
)

// consumerHandlerName identifies the feedback handler inside the router.
const consumerHandlerName = "feedback-consumer"

// Transport builds the broker side of the pipeline. The default transport
// connects to JetStream; tests substitute an in-process one.
type Transport interface {
	// Open prepares the stream and returns a subscriber for the feedback
	// topic plus an optional publisher for the poison topic.
	Open(ctx context.Context) (message.Subscriber, message.Publisher, error)

	// Close releases everything Open created.
	Close() error
}

// FeedbackConsumer owns the feedback pipeline: transport, router and handler.
//
// Start builds a fresh transport and router on every call so a supervisor
// can restart the consumer after a failure. The handler, and with it the
// processed-event LRU, survives restarts.
type FeedbackConsumer struct {
	cfg       Config
	handler   *FeedbackHandler
	logger    watermill.LoggerAdapter
	transport func() Transport

	mu      sync.Mutex
	running bool
	current Transport
	router  *Router
}

// NewFeedbackConsumer creates a consumer for cfg that applies messages to engine.
// A nil transport factory uses JetStream at cfg.URL.
func NewFeedbackConsumer(cfg Config, engine FeedbackEngine, transport func() Transport) (*FeedbackConsumer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	handler, err := NewFeedbackHandler(engine, cfg.DedupCapacity, cfg.DedupTTL)
	if err != nil {
		return nil, err
	}

	c := &FeedbackConsumer{
		cfg:       cfg,
		handler:   handler,
		logger:    watermill.NewSlogLogger(logging.NewSlogLogger()),
		transport: transport,
	}
	if c.transport == nil {
		c.transport = func() Transport { return newJetStreamTransport(c.cfg, c.logger) }
	}
	return c, nil
}

// Start opens the transport and runs the router until Shutdown or ctx ends.
// It returns once the router is running.
func (c *FeedbackConsumer) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.running {
		return nil
	}

	transport := c.transport()
	sub, poison, err := transport.Open(ctx)
	if err != nil {
		_ = transport.Close()
		return fmt.Errorf("open feedback transport: %w", err)
	}

	router, err := NewRouter(&c.cfg.Router, poison, c.logger)
	if err != nil {
		_ = transport.Close()
		return err
	}
	router.AddConsumerHandler(consumerHandlerName, c.cfg.Topic, sub, c.handler.Handle)

	running := router.RunAsync(ctx)
	select {
	case <-running:
	case <-ctx.Done():
		_ = router.Close()
		_ = transport.Close()
		return fmt.Errorf("context canceled while starting router: %w", ctx.Err())
	}

	c.current = transport
	c.router = router
	c.running = true

	logging.Info().
		Str("topic", c.cfg.Topic).
		Str("stream", c.cfg.Stream.Name).
		Msg("Feedback consumer started")
	return nil
}

// Shutdown stops the router first, then closes the transport.
func (c *FeedbackConsumer) Shutdown(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.running {
		return
	}
	c.running = false

	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := c.router.Close(); err != nil {
			logging.Warn().Err(err).Msg("Error closing feedback router")
		}
		if err := c.current.Close(); err != nil {
			logging.Warn().Err(err).Msg("Error closing feedback transport")
		}
	}()

	select {
	case <-done:
		logging.Info().Msg("Feedback consumer stopped")
	case <-ctx.Done():
		logging.Warn().Err(ctx.Err()).Msg("Feedback consumer shutdown timed out")
	}
}

// IsRunning reports whether the router is processing messages.
func (c *FeedbackConsumer) IsRunning() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running && c.router.IsRunning()
}

// Stats returns the handler counters.
func (c *FeedbackConsumer) Stats() HandlerStats {
	return c.handler.Stats()
}

// HealthCheck combines router state and handler counters.
func (c *FeedbackConsumer) HealthCheck(ctx context.Context) ComponentHealth {
	c.mu.Lock()
	router := c.router
	running := c.running
	c.mu.Unlock()

	if !running || router == nil {
		return unhealthy(consumerHandlerName, errConsumerStopped)
	}

	health := router.HealthCheck(ctx)
	health.Name = consumerHandlerName
	if health.Details == nil {
		health.Details = make(map[string]interface{})
	}
	stats := c.handler.Stats()
	health.Details["duplicates"] = stats.Duplicates
	health.Details["rejected"] = stats.Rejected
	return health
}

// jetStreamTransport connects to NATS, ensures the stream and opens the
// durable subscriber and poison publisher.
type jetStreamTransport struct {
	cfg    Config
	logger watermill.LoggerAdapter

	conn   *natsgo.Conn
	sub    *Subscriber
	poison *Publisher
}

func newJetStreamTransport(cfg Config, logger watermill.LoggerAdapter) *jetStreamTransport {
	return &jetStreamTransport{cfg: cfg, logger: logger}
}

func (t *jetStreamTransport) Open(ctx context.Context) (message.Subscriber, message.Publisher, error) {
	conn, js, err := ConnectJetStream(t.cfg.URL)
	if err != nil {
		return nil, nil, err
	}
	t.conn = conn

	streams, err := NewStreamInitializer(js, &t.cfg.Stream)
	if err != nil {
		return nil, nil, err
	}
	if _, err := streams.EnsureStream(ctx); err != nil {
		return nil, nil, err
	}

	subCfg := t.cfg.Subscriber
	subCfg.URL = t.cfg.URL
	subCfg.StreamName = t.cfg.Stream.Name
	t.sub, err = NewSubscriber(&subCfg, t.logger)
	if err != nil {
		return nil, nil, err
	}

	if t.cfg.Router.PoisonQueueTopic == "" {
		return t.sub, nil, nil
	}

	pubCfg := t.cfg.Publisher
	pubCfg.URL = t.cfg.URL
	t.poison, err = NewPublisher(pubCfg, t.cfg.Router.PoisonQueueTopic, t.logger)
	if err != nil {
		return nil, nil, err
	}
	t.poison.SetCircuitBreaker(NewCircuitBreaker(t.cfg.CircuitBreaker))
	return t.sub, t.poison.Guarded(), nil
}

func (t *jetStreamTransport) Close() error {
	var errs []error
	if t.sub != nil {
		errs = append(errs, t.sub.Close())
	}
	if t.poison != nil {
		errs = append(errs, t.poison.Close())
	}
	if t.conn != nil {
		t.conn.Close()
	}
	return errors.Join(errs...)
}
