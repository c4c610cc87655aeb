// Thread - Wardrobe Outfit Recommendation Engine
// Copyright 2026 The Thread Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mdcscry/thread

package eventprocessor

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
)

const routerHealthName = "feedback-router"

var errRouterStopped = errors.New("router is not running")

// RouterConfig controls redelivery of failed feedback.
type RouterConfig struct {
	// CloseTimeout bounds how long Close waits for an in-flight event.
	CloseTimeout time.Duration

	// Transient failures, such as a locked DuckDB file, are retried with
	// exponential backoff inside the handler before the message is nacked.
	RetryMaxRetries      int
	RetryInitialInterval time.Duration
	RetryMaxInterval     time.Duration
	RetryMultiplier      float64

	// ThrottlePerSecond caps handled events per second. Zero disables it.
	ThrottlePerSecond int64

	// PoisonQueueTopic receives events that failed permanently or ran out
	// of retries. Empty disables the poison queue.
	PoisonQueueTopic string
}

// DefaultRouterConfig returns the production redelivery settings.
func DefaultRouterConfig() RouterConfig {
	return RouterConfig{
		CloseTimeout:         30 * time.Second,
		RetryMaxRetries:      5,
		RetryInitialInterval: time.Second,
		RetryMaxInterval:     time.Minute,
		RetryMultiplier:      2.0,
		PoisonQueueTopic:     "feedback.poison",
	}
}

// Router runs the feedback handler under Watermill's router.
type Router struct {
	wm      *message.Router
	logger  watermill.LoggerAdapter
	running atomic.Bool

	handlers  atomic.Int32
	received  atomic.Int64
	processed atomic.Int64
	failed    atomic.Int64
}

// NewRouter builds the router. poison may be nil, in which case permanent
// failures are logged and acknowledged instead of parked.
//
// A message passes, outermost first: outcome counting, the exhausted-retry
// poison queue, the optional throttle, retry with backoff, the
// permanent-error poison queue, and panic recovery.
func NewRouter(cfg *RouterConfig, poison message.Publisher, logger watermill.LoggerAdapter) (*Router, error) {
	if cfg == nil {
		def := DefaultRouterConfig()
		cfg = &def
	}
	if logger == nil {
		logger = watermill.NopLogger{}
	}

	wm, err := message.NewRouter(message.RouterConfig{CloseTimeout: cfg.CloseTimeout}, logger)
	if err != nil {
		return nil, fmt.Errorf("create feedback router: %w", err)
	}

	r := &Router{wm: wm, logger: logger}
	chain, err := r.middlewares(cfg, poison)
	if err != nil {
		return nil, err
	}
	wm.AddMiddleware(chain...)
	return r, nil
}

func (r *Router) middlewares(cfg *RouterConfig, poison message.Publisher) ([]message.HandlerMiddleware, error) {
	chain := []message.HandlerMiddleware{r.count}

	parking := poison != nil && cfg.PoisonQueueTopic != ""
	if parking {
		exhausted, err := middleware.PoisonQueue(poison, cfg.PoisonQueueTopic)
		if err != nil {
			return nil, fmt.Errorf("poison queue: %w", err)
		}
		chain = append(chain, exhausted)
	}

	if cfg.ThrottlePerSecond > 0 {
		chain = append(chain, middleware.NewThrottle(cfg.ThrottlePerSecond, time.Second).Middleware)
	}

	retry := middleware.Retry{
		MaxRetries:      cfg.RetryMaxRetries,
		InitialInterval: cfg.RetryInitialInterval,
		MaxInterval:     cfg.RetryMaxInterval,
		Multiplier:      cfg.RetryMultiplier,
		Logger:          r.logger,
	}
	chain = append(chain, retry.Middleware)

	if parking {
		permanent, err := middleware.PoisonQueueWithFilter(poison, cfg.PoisonQueueTopic, IsPermanentError)
		if err != nil {
			return nil, fmt.Errorf("permanent poison queue: %w", err)
		}
		chain = append(chain, permanent)
	} else {
		chain = append(chain, r.ackPermanent)
	}

	return append(chain, middleware.Recoverer), nil
}

// count records the final outcome of each delivery.
func (r *Router) count(h message.HandlerFunc) message.HandlerFunc {
	return func(msg *message.Message) ([]*message.Message, error) {
		r.received.Add(1)
		out, err := h(msg)
		if err == nil {
			r.processed.Add(1)
		} else {
			r.failed.Add(1)
		}
		return out, err
	}
}

// ackPermanent swallows permanent errors so JetStream does not redeliver
// an event that can never succeed.
func (r *Router) ackPermanent(h message.HandlerFunc) message.HandlerFunc {
	return func(msg *message.Message) ([]*message.Message, error) {
		out, err := h(msg)
		if IsPermanentError(err) {
			r.logger.Error("Dropping feedback event after permanent failure", err, watermill.LogFields{
				"message_uuid": msg.UUID,
			})
			return out, nil
		}
		return out, err
	}
}

// AddConsumerHandler subscribes handler to topic.
func (r *Router) AddConsumerHandler(name, topic string, sub message.Subscriber, handler message.NoPublishHandlerFunc) *message.Handler {
	r.handlers.Add(1)
	return r.wm.AddConsumerHandler(name, topic, sub, handler)
}

// Run blocks until ctx is cancelled or Close is called.
func (r *Router) Run(ctx context.Context) error {
	r.running.Store(true)
	defer r.running.Store(false)
	return r.wm.Run(ctx)
}

// RunAsync runs the router in the background. The returned channel closes
// once handlers are subscribed.
func (r *Router) RunAsync(ctx context.Context) <-chan struct{} {
	go func() {
		if err := r.Run(ctx); err != nil {
			r.logger.Error("Feedback router stopped", err, nil)
		}
	}()
	return r.wm.Running()
}

// Close stops the router, waiting up to CloseTimeout for in-flight events.
func (r *Router) Close() error {
	return r.wm.Close()
}

// IsRunning reports whether Run is active.
func (r *Router) IsRunning() bool {
	return r.running.Load()
}

// HealthCheck reports whether the router is running, with delivery counts.
func (r *Router) HealthCheck(_ context.Context) ComponentHealth {
	if !r.running.Load() {
		return unhealthy(routerHealthName, errRouterStopped)
	}
	return ComponentHealth{
		Name:      routerHealthName,
		Healthy:   true,
		Message:   "router is running",
		LastCheck: time.Now(),
		Details: map[string]interface{}{
			"handlers":           int(r.handlers.Load()),
			"messages_received":  r.received.Load(),
			"messages_processed": r.processed.Load(),
			"messages_failed":    r.failed.Load(),
		},
	}
}
