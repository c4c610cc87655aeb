// Thread - Wardrobe Outfit Recommendation Engine
// Copyright 2026 The Thread Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mdcscry/thread

package metrics

import (
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for the outfit engine:
// - Database query performance (DuckDB)
// - Outfit generation and scoring
// - Feedback and preference updates
// - Model training and the model cache
// - Trip packing
// - Weather lookups and circuit breaker state
// - NATS feedback ingestion
// - Ops HTTP endpoint

var (
	// Database Metrics
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "duckdb_query_duration_seconds",
			Help:    "Duration of DuckDB queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "table"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "duckdb_query_errors_total",
			Help: "Total number of DuckDB query errors",
		},
		[]string{"operation", "table", "error_type"},
	)

	// Recommendation Metrics
	OutfitsGenerated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "thread_outfits_generated_total",
			Help: "Total number of outfits returned to callers",
		},
	)

	CandidatesScored = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "thread_candidates_scored_total",
			Help: "Total number of candidate outfits scored",
		},
		[]string{"method"}, // "ema", "blend"
	)

	GenerateDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "thread_generate_duration_seconds",
			Help:    "Duration of outfit generation requests in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		},
	)

	EmptyPoolRequests = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "thread_empty_pool_requests_total",
			Help: "Total number of generation requests with no eligible items",
		},
	)

	// Feedback Metrics
	FeedbackEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "thread_feedback_events_total",
			Help: "Total number of feedback events recorded",
		},
		[]string{"signal"},
	)

	EMAUpdates = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "thread_ema_updates_total",
			Help: "Total number of item preference score updates",
		},
	)

	// Training Metrics
	TrainingRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "thread_training_runs_total",
			Help: "Total number of model training attempts",
		},
		[]string{"outcome"}, // "success", "insufficient", "error"
	)

	TrainingDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "thread_training_duration_seconds",
			Help:    "Duration of model training runs in seconds",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10, 30, 60, 120},
		},
	)

	ModelCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "thread_model_cache_lookups_total",
			Help: "Total number of trained model cache lookups",
		},
		[]string{"result"}, // "hit", "miss"
	)

	// Packing Metrics
	PackingDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "thread_packing_duration_seconds",
			Help:    "Duration of trip packing optimization in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	PackingVersatility = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "thread_packing_versatility",
			Help:    "Versatility score (covered activities per packed item) of trip plans",
			Buckets: []float64{0, .05, .1, .2, .33, .5, .75, 1},
		},
	)

	// Weather Metrics
	WeatherLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "thread_weather_lookups_total",
			Help: "Total number of weather lookups",
		},
		[]string{"result"}, // "hit", "miss", "error", "rejected"
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// NATS Feedback Ingestion Metrics
	NATSMessagesConsumed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "nats_messages_consumed_total",
			Help: "Total number of messages consumed from NATS",
		},
	)

	NATSMessagesProcessed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "nats_messages_processed_total",
			Help: "Total number of messages successfully processed",
		},
	)

	NATSMessagesDeduplicated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "nats_messages_deduplicated_total",
			Help: "Total number of messages skipped due to deduplication",
		},
	)

	NATSMessagesParseFailed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "nats_messages_parse_failed_total",
			Help: "Total number of messages that failed to parse",
		},
	)

	NATSMessagesPublished = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "nats_messages_published_total",
			Help: "Total number of messages published to NATS",
		},
	)

	NATSProcessingDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "nats_processing_duration_seconds",
			Help:    "Duration of NATS message processing in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// Ops HTTP Metrics
	OpsRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ops_http_request_duration_seconds",
			Help:    "Duration of ops HTTP requests in seconds",
			Buckets: []float64{.001, .005, .01, .05, .1, .5, 1, 2},
		},
		[]string{"method", "route", "status"},
	)

	OpsRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ops_http_requests_in_flight",
			Help: "Number of ops HTTP requests being served",
		},
	)

	// System Metrics
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "app_info",
			Help: "Application version and build information",
		},
		[]string{"version", "go_version"},
	)

	AppUptime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "app_uptime_seconds",
			Help: "Application uptime in seconds",
		},
	)
)

// RecordDBQuery records a database query metric
func RecordDBQuery(operation, table string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
	if err != nil {
		errorType := err.Error()
		// Truncate long error messages
		if len(errorType) > 50 {
			errorType = errorType[:50]
		}
		DBQueryErrors.WithLabelValues(operation, table, errorType).Inc()
	}
}

// RecordGenerate records one generation request.
func RecordGenerate(returned int, methods map[string]int, duration time.Duration) {
	OutfitsGenerated.Add(float64(returned))
	for method, n := range methods {
		CandidatesScored.WithLabelValues(method).Add(float64(n))
	}
	GenerateDuration.Observe(duration.Seconds())
}

// RecordFeedback records a feedback event and the item updates it caused.
func RecordFeedback(signal string, updates int) {
	FeedbackEvents.WithLabelValues(signal).Inc()
	EMAUpdates.Add(float64(updates))
}

// RecordTraining records a training attempt.
func RecordTraining(outcome string, duration time.Duration) {
	TrainingRuns.WithLabelValues(outcome).Inc()
	TrainingDuration.Observe(duration.Seconds())
}

// RecordCircuitBreakerTransition records a breaker state change.
func RecordCircuitBreakerTransition(name, from, to string, state float64) {
	CircuitBreakerTransitions.WithLabelValues(name, from, to).Inc()
	CircuitBreakerState.WithLabelValues(name).Set(state)
}

// RecordNATSConsume records a message being consumed from NATS
func RecordNATSConsume() {
	NATSMessagesConsumed.Inc()
}

// RecordNATSProcessed records a message being successfully processed
func RecordNATSProcessed(duration time.Duration) {
	NATSMessagesProcessed.Inc()
	NATSProcessingDuration.Observe(duration.Seconds())
}

// RecordNATSDeduplicated records a message being skipped due to deduplication
func RecordNATSDeduplicated() {
	NATSMessagesDeduplicated.Inc()
}

// RecordNATSParseFailed records a message that failed to parse
func RecordNATSParseFailed() {
	NATSMessagesParseFailed.Inc()
}

// RecordNATSPublish records a message being published to NATS
func RecordNATSPublish() {
	NATSMessagesPublished.Inc()
}

// RecordWeatherLookup records a weather lookup by result: hit, miss, error or rejected.
func RecordWeatherLookup(result string) {
	WeatherLookups.WithLabelValues(result).Inc()
}

// RecordOpsRequest records one served ops HTTP request. route is the
// matched route pattern, not the raw path.
func RecordOpsRequest(method, route, status string, duration time.Duration) {
	OpsRequestDuration.WithLabelValues(method, route, status).Observe(duration.Seconds())
}

// TrackOpsRequest adjusts the in-flight gauge.
func TrackOpsRequest(active bool) {
	if active {
		OpsRequestsInFlight.Inc()
	} else {
		OpsRequestsInFlight.Dec()
	}
}

// SetAppInfo publishes the build version.
func SetAppInfo(version string) {
	AppInfo.WithLabelValues(version, runtime.Version()).Set(1)
}

// SetUptime publishes seconds since start.
func SetUptime(start time.Time) {
	AppUptime.Set(time.Since(start).Seconds())
}
