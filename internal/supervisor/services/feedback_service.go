// Thread - Wardrobe Outfit Recommendation Engine
// Copyright 2026 The Thread Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mdcscry/thread

package services

import (
	"context"
	"fmt"
	"time"
)

// ConsumerRunner is the lifecycle of eventprocessor.FeedbackConsumer.
type ConsumerRunner interface {
	Start(ctx context.Context) error
	Shutdown(ctx context.Context)
	IsRunning() bool
}

// FeedbackConsumerService adapts the consumer's Start/Shutdown lifecycle
// to suture. A failed Start is returned so suture restarts the consumer
// with backoff, for example while NATS is unreachable.
type FeedbackConsumerService struct {
	consumer        ConsumerRunner
	shutdownTimeout time.Duration
	pollInterval    time.Duration
	name            string
}

// NewFeedbackConsumerService wraps consumer. A non-positive timeout defaults to 10s.
func NewFeedbackConsumerService(consumer ConsumerRunner, shutdownTimeout time.Duration) *FeedbackConsumerService {
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}
	return &FeedbackConsumerService{
		consumer:        consumer,
		shutdownTimeout: shutdownTimeout,
		pollInterval:    5 * time.Second,
		name:            "feedback-consumer",
	}
}

// Serve implements suture.Service. It also returns an error when the
// consumer stops on its own so the supervisor restarts it.
func (s *FeedbackConsumerService) Serve(ctx context.Context) error {
	if err := s.consumer.Start(ctx); err != nil {
		return fmt.Errorf("feedback consumer start failed: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()
		s.consumer.Shutdown(shutdownCtx)
	}()

	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if !s.consumer.IsRunning() {
				return fmt.Errorf("feedback consumer stopped unexpectedly")
			}
		}
	}
}

// String returns the service name for supervisor logs.
func (s *FeedbackConsumerService) String() string {
	return s.name
}
