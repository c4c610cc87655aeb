// Thread - Wardrobe Outfit Recommendation Engine
// Copyright 2026 The Thread Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mdcscry/thread

/*
Package metrics provides Prometheus metrics for the outfit engine.

Metrics are registered on the default registry through promauto and exposed
by the ops listener at /metrics in Prometheus text format:

	curl http://localhost:9464/metrics

# Available Metrics

Database Metrics:
  - duckdb_query_duration_seconds: Query execution time (histogram)
    Labels: operation, table
  - duckdb_query_errors_total: Failed queries (counter)
    Labels: operation, table, error_type

Recommendation Metrics:
  - thread_outfits_generated_total: Outfits returned (counter)
  - thread_candidates_scored_total: Candidates scored (counter)
    Labels: method (ema, blend)
  - thread_generate_duration_seconds: Generation latency (histogram)
  - thread_empty_pool_requests_total: Requests with no eligible items (counter)

Feedback Metrics:
  - thread_feedback_events_total: Feedback events (counter)
    Labels: signal
  - thread_ema_updates_total: Item preference updates (counter)

Training Metrics:
  - thread_training_runs_total: Training attempts (counter)
    Labels: outcome (success, insufficient, error)
  - thread_training_duration_seconds: Training time (histogram)
  - thread_model_cache_lookups_total: Model cache lookups (counter)
    Labels: result (hit, miss)

Packing Metrics:
  - thread_packing_duration_seconds: Optimization time (histogram)
  - thread_packing_versatility: Plan versatility (histogram)

Weather and Circuit Breaker Metrics:
  - thread_weather_lookups_total: Weather lookups (counter)
    Labels: result (hit, miss, error, rejected)
  - circuit_breaker_state: Current state (gauge)
    Labels: name
    Values: 0=closed, 1=half-open, 2=open
  - circuit_breaker_requests_total: Requests (counter)
    Labels: name, result
  - circuit_breaker_state_transitions_total: Transitions (counter)
    Labels: name, from_state, to_state

NATS Metrics:
  - nats_messages_consumed_total, nats_messages_processed_total,
    nats_messages_deduplicated_total, nats_messages_parse_failed_total,
    nats_messages_published_total (counters)
  - nats_processing_duration_seconds (histogram)

# Usage

	metrics.RecordFeedback(string(signal), len(patches))
	metrics.RecordTraining("success", time.Since(start))
	metrics.ModelCacheLookups.WithLabelValues("hit").Inc()

# Thread Safety

All metric operations are safe for concurrent use.
*/
package metrics
