// Thread - Wardrobe Outfit Recommendation Engine
// Copyright 2026 The Thread Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mdcscry/thread

package eventprocessor

import (
	"fmt"
	"time"
)

// Config aggregates everything the feedback pipeline needs.
type Config struct {
	// Enabled controls whether the feedback consumer runs at all.
	Enabled bool

	// URL is the NATS server connection URL.
	URL string

	// Topic is the subject feedback messages are published to and consumed from.
	Topic string

	Stream         StreamConfig
	Subscriber     SubscriberConfig
	Publisher      PublisherConfig
	Router         RouterConfig
	CircuitBreaker CircuitBreakerConfig

	// DedupCapacity bounds the processed-event LRU used by the handler.
	DedupCapacity int
	DedupTTL      time.Duration
}

// DefaultConfig returns production defaults for the feedback pipeline.
func DefaultConfig() Config {
	url := "nats://127.0.0.1:4222"
	return Config{
		Enabled:        false,
		URL:            url,
		Topic:          "feedback.events",
		Stream:         DefaultStreamConfig(),
		Subscriber:     DefaultSubscriberConfig(url),
		Publisher:      DefaultPublisherConfig(url),
		Router:         DefaultRouterConfig(),
		CircuitBreaker: DefaultCircuitBreakerConfig("poison-publisher"),
		DedupCapacity:  10000,
		DedupTTL:       time.Hour,
	}
}

// Validate checks the configuration for values the pipeline cannot run with.
func (c *Config) Validate() error {
	if c.URL == "" {
		return fmt.Errorf("%w: nats url is required", ErrInvalidConfig)
	}
	if c.Topic == "" {
		return fmt.Errorf("%w: topic is required", ErrInvalidConfig)
	}
	if c.Stream.Name == "" || len(c.Stream.Subjects) == 0 {
		return fmt.Errorf("%w: stream name and subjects are required", ErrInvalidConfig)
	}
	if c.Subscriber.SubscribersCount < 1 {
		return fmt.Errorf("%w: subscribers count must be at least 1", ErrInvalidConfig)
	}
	if c.Router.PoisonQueueTopic == c.Topic {
		return fmt.Errorf("%w: poison topic must differ from the feedback topic", ErrInvalidConfig)
	}
	if c.DedupCapacity < 1 {
		return fmt.Errorf("%w: dedup capacity must be positive", ErrInvalidConfig)
	}
	return nil
}

// PublisherConfig configures the poison topic publisher connection.
type PublisherConfig struct {
	URL              string
	MaxReconnects    int
	ReconnectWait    time.Duration
	ReconnectBuffer  int
	EnableTrackMsgID bool // nolint:revive // ID is correct per Go conventions
}

// DefaultPublisherConfig retries forever and buffers 8 MiB while reconnecting.
func DefaultPublisherConfig(url string) PublisherConfig {
	return PublisherConfig{
		URL:              url,
		MaxReconnects:    -1,
		ReconnectWait:    2 * time.Second,
		ReconnectBuffer:  8 * 1024 * 1024,
		EnableTrackMsgID: true,
	}
}

// SubscriberConfig configures the durable feedback consumer.
type SubscriberConfig struct {
	URL              string
	DurableName      string
	QueueGroup       string
	SubscribersCount int
	AckWaitTimeout   time.Duration
	MaxDeliver       int
	MaxAckPending    int
	CloseTimeout     time.Duration
	MaxReconnects    int
	ReconnectWait    time.Duration

	// StreamName binds the subscriber to an existing stream and disables
	// auto-provisioning. Required for wildcard stream subjects.
	StreamName string
}

// DefaultSubscriberConfig returns production defaults for the subscriber.
//
// One subscriber keeps feedback for a user in publish order, which the
// EMA update depends on.
func DefaultSubscriberConfig(url string) SubscriberConfig {
	return SubscriberConfig{
		URL:              url,
		DurableName:      "thread-feedback",
		QueueGroup:       "thread",
		SubscribersCount: 1,
		AckWaitTimeout:   30 * time.Second,
		MaxDeliver:       5,
		MaxAckPending:    256,
		CloseTimeout:     30 * time.Second,
		MaxReconnects:    -1,
		ReconnectWait:    2 * time.Second,
		StreamName:       "THREAD_FEEDBACK",
	}
}

// StreamConfig is the JetStream stream that stores feedback events.
type StreamConfig struct {
	Name            string
	Subjects        []string
	MaxAge          time.Duration
	MaxBytes        int64
	MaxMsgs         int64
	DuplicateWindow time.Duration
	Replicas        int
}

// DefaultStreamConfig keeps 30 days or 1 GiB of feedback, whichever is hit first.
func DefaultStreamConfig() StreamConfig {
	return StreamConfig{
		Name:            "THREAD_FEEDBACK",
		Subjects:        []string{"feedback.>"},
		MaxAge:          30 * 24 * time.Hour,
		MaxBytes:        1 << 30,
		MaxMsgs:         -1,
		DuplicateWindow: 2 * time.Minute,
		Replicas:        1,
	}
}

// CircuitBreakerConfig guards poison topic publishes.
type CircuitBreakerConfig struct {
	Name string

	// MaxRequests are let through while half-open.
	MaxRequests uint32

	// Interval clears the closed-state counts; Timeout is how long the
	// breaker stays open.
	Interval time.Duration
	Timeout  time.Duration

	FailureThreshold uint32
}

// DefaultCircuitBreakerConfig opens after five consecutive failures.
func DefaultCircuitBreakerConfig(name string) CircuitBreakerConfig {
	return CircuitBreakerConfig{
		Name:             name,
		MaxRequests:      3,
		Interval:         30 * time.Second,
		Timeout:          10 * time.Second,
		FailureThreshold: 5,
	}
}
