// Thread - Wardrobe Outfit Recommendation Engine
// Copyright 2026 The Thread Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mdcscry/thread

package eventprocessor

import (
	"context"
	"errors"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/mdcscry/thread/internal/logging"
	"github.com/mdcscry/thread/internal/metrics"
)

// Breaker guards poison topic publishes. It carries no result value.
type Breaker = gobreaker.CircuitBreaker[struct{}]

// NewCircuitBreaker returns a breaker that opens after FailureThreshold
// consecutive publish failures. A cancelled publish does not count
// against the broker.
func NewCircuitBreaker(cfg CircuitBreakerConfig) *Breaker {
	return gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= cfg.FailureThreshold
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: onBreakerStateChange,
	})
}

func onBreakerStateChange(name string, from, to gobreaker.State) {
	event := logging.Info()
	if to == gobreaker.StateOpen {
		event = logging.Warn()
	}
	event.Str("breaker", name).
		Stringer("from", from).
		Stringer("to", to).
		Msg("Poison publisher breaker changed state")
	metrics.RecordCircuitBreakerTransition(name, from.String(), to.String(), StateValue(to))
}

// StateValue is the gauge encoding of a breaker state.
func StateValue(s gobreaker.State) float64 {
	return map[gobreaker.State]float64{
		gobreaker.StateClosed:   0,
		gobreaker.StateHalfOpen: 1,
		gobreaker.StateOpen:     2,
	}[s]
}
