// Thread - Wardrobe Outfit Recommendation Engine
// Copyright 2026 The Thread Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mdcscry/thread

package main

import (
	"net/http"

	"github.com/mdcscry/thread/internal/config"
	"github.com/mdcscry/thread/internal/eventprocessor"
	"github.com/mdcscry/thread/internal/recommend"
	"github.com/mdcscry/thread/internal/recommend/storage"
	"github.com/mdcscry/thread/internal/supervisor/services"
	"github.com/mdcscry/thread/internal/weather"
)

// buildEngineConfig maps application settings onto the engine configuration.
// Fields without an application setting keep the engine defaults.
func buildEngineConfig(cfg *config.Config) *recommend.Config {
	ec := recommend.DefaultConfig()
	r := &cfg.Recommend

	ec.Seed = r.Seed
	ec.Generation.DefaultCandidates = r.DefaultCandidates
	ec.Generation.MaxCandidates = r.MaxCandidates
	ec.Generation.DefaultLimit = r.DefaultLimit
	ec.Generation.MaxLimit = r.MaxLimit
	ec.Generation.ScoreConcurrency = r.ScoreConcurrency
	ec.Diversity.MMRLambda = r.MMRLambda

	ec.Training.MinSamples = r.MinSamples
	ec.Training.MaxEpochs = r.MaxEpochs
	ec.Training.Patience = r.Patience
	ec.Training.LearningRate = r.LearningRate
	ec.Training.Timeout = r.TrainTimeout
	ec.Training.MinNewFeedback = r.MinNewFeedback
	ec.Training.ModelCacheSize = cfg.Models.CacheSize
	ec.Training.ModelCacheTTL = cfg.Models.CacheTTL

	ec.Packing.Restarts = cfg.Packing.Restarts
	ec.Packing.ScanWindow = cfg.Packing.ScanWindow
	ec.Packing.OutfitsPerActivity = cfg.Packing.OutfitsPerActivity
	ec.Packing.DefaultMaxItems = cfg.Packing.DefaultMaxItems

	if cfg.Weather.Timeout > 0 {
		ec.WeatherTimeout = cfg.Weather.Timeout
	}
	return ec
}

// buildStorageConfig maps model store settings.
func buildStorageConfig(cfg *config.Config) storage.Config {
	return storage.Config{
		Dir:          cfg.Models.Dir,
		InMemory:     cfg.Models.InMemory,
		KeepVersions: cfg.Models.KeepVersions,
	}
}

// buildRetrainConfig maps retrain loop settings.
func buildRetrainConfig(cfg *config.Config) services.RetrainServiceConfig {
	return services.RetrainServiceConfig{
		TrainOnStartup: cfg.Recommend.TrainOnStartup,
		Interval:       cfg.Recommend.RetrainInterval,
	}
}

// retrainEnabled reports whether the retrain service has any work to do.
func retrainEnabled(cfg *config.Config) bool {
	return cfg.Recommend.RetrainInterval > 0 || cfg.Recommend.TrainOnStartup
}

// buildWeatherConfig maps weather client settings. Unset values keep the
// client defaults.
func buildWeatherConfig(cfg *config.Config) weather.Config {
	wc := weather.DefaultConfig()
	w := &cfg.Weather

	if w.BaseURL != "" {
		wc.BaseURL = w.BaseURL
	}
	if w.Timeout > 0 {
		wc.Timeout = w.Timeout
	}
	if w.CacheTTL > 0 {
		wc.CacheTTL = w.CacheTTL
	}
	if w.RequestsPerSecond > 0 {
		wc.RequestsPerSecond = w.RequestsPerSecond
	}
	if w.Burst > 0 {
		wc.Burst = w.Burst
	}
	if w.FailureThreshold > 0 {
		wc.FailureThreshold = w.FailureThreshold
	}
	if w.OpenTimeout > 0 {
		wc.OpenTimeout = w.OpenTimeout
	}
	return wc
}

// buildEventConfig maps NATS settings onto the feedback pipeline configuration.
func buildEventConfig(cfg *config.Config) eventprocessor.Config {
	n := &cfg.NATS
	ec := eventprocessor.DefaultConfig()

	ec.Enabled = n.Enabled
	ec.URL = n.URL
	ec.Topic = n.Topic

	ec.Stream.Name = n.StreamName
	ec.Stream.Subjects = n.StreamSubjects
	if n.StreamMaxAge > 0 {
		ec.Stream.MaxAge = n.StreamMaxAge
	}

	ec.Subscriber = eventprocessor.DefaultSubscriberConfig(n.URL)
	ec.Subscriber.StreamName = n.StreamName
	ec.Subscriber.DurableName = n.DurableName
	ec.Subscriber.QueueGroup = n.QueueGroup
	ec.Subscriber.SubscribersCount = n.SubscribersCount
	if n.MaxDeliver > 0 {
		ec.Subscriber.MaxDeliver = n.MaxDeliver
	}
	if n.AckWait > 0 {
		ec.Subscriber.AckWaitTimeout = n.AckWait
	}
	ec.Publisher = eventprocessor.DefaultPublisherConfig(n.URL)

	ec.Router.RetryMaxRetries = n.RetryMaxRetries
	if n.RetryInitialInterval > 0 {
		ec.Router.RetryInitialInterval = n.RetryInitialInterval
	}
	if n.RetryMaxInterval > 0 {
		ec.Router.RetryMaxInterval = n.RetryMaxInterval
	}
	ec.Router.PoisonQueueTopic = n.PoisonTopic
	ec.Router.ThrottlePerSecond = n.ThrottlePerSecond

	if n.DedupCapacity > 0 {
		ec.DedupCapacity = n.DedupCapacity
	}
	if n.DedupTTL > 0 {
		ec.DedupTTL = n.DedupTTL
	}
	return ec
}

// newOpsServer builds the ops HTTP server for /livez, /healthz and /metrics.
func newOpsServer(cfg *config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           handler,
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
	}
}
