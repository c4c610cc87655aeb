// Thread - Wardrobe Outfit Recommendation Engine
// Copyright 2026 The Thread Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mdcscry/thread

package config

import (
	"fmt"
	"net/url"
	"strings"
)

// Validate checks that required configuration is present and valid.
// Section-specific tuning (candidate counts, training hyperparameters) is
// validated again by the engine when it is constructed.
func (c *Config) Validate() error {
	if err := c.validateLogging(); err != nil {
		return err
	}
	if err := c.validateDatabase(); err != nil {
		return err
	}
	if err := c.validateModels(); err != nil {
		return err
	}
	if err := c.validateRecommend(); err != nil {
		return err
	}
	if err := c.validateNATS(); err != nil {
		return err
	}
	if err := c.validateWeather(); err != nil {
		return err
	}
	return c.validateServer()
}

func (c *Config) validateLogging() error {
	switch strings.ToLower(c.Logging.Level) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal", "panic":
	default:
		return fmt.Errorf("LOG_LEVEL must be one of trace, debug, info, warn, error, fatal, panic, got %q", c.Logging.Level)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "json", "console":
	default:
		return fmt.Errorf("LOG_FORMAT must be json or console, got %q", c.Logging.Format)
	}
	return nil
}

func (c *Config) validateDatabase() error {
	if c.Database.Path == "" {
		return fmt.Errorf("DUCKDB_PATH is required")
	}
	if c.Database.Threads < 0 {
		return fmt.Errorf("DUCKDB_THREADS must be non-negative, got %d", c.Database.Threads)
	}
	return nil
}

func (c *Config) validateModels() error {
	if !c.Models.InMemory && c.Models.Dir == "" {
		return fmt.Errorf("MODELS_DIR is required unless MODELS_IN_MEMORY=true")
	}
	if c.Models.KeepVersions < 0 {
		return fmt.Errorf("MODELS_KEEP_VERSIONS must be non-negative, got %d", c.Models.KeepVersions)
	}
	if c.Models.CacheSize < 1 {
		return fmt.Errorf("MODEL_CACHE_SIZE must be positive, got %d", c.Models.CacheSize)
	}
	return nil
}

func (c *Config) validateRecommend() error {
	r := &c.Recommend
	if r.DefaultCandidates < 1 || r.MaxCandidates < r.DefaultCandidates {
		return fmt.Errorf("recommend candidates must satisfy 1 <= default (%d) <= max (%d)", r.DefaultCandidates, r.MaxCandidates)
	}
	if r.RetrainInterval < 0 {
		return fmt.Errorf("RETRAIN_INTERVAL must be non-negative, got %v", r.RetrainInterval)
	}
	if c.Packing.Restarts < 1 {
		return fmt.Errorf("PACKING_RESTARTS must be positive, got %d", c.Packing.Restarts)
	}
	return nil
}

func (c *Config) validateNATS() error {
	if !c.NATS.Enabled {
		return nil
	}
	if c.NATS.URL == "" {
		return fmt.Errorf("NATS_URL is required when NATS_ENABLED=true")
	}
	if c.NATS.Topic == "" {
		return fmt.Errorf("NATS_TOPIC is required when NATS_ENABLED=true")
	}
	if c.NATS.PoisonTopic == c.NATS.Topic {
		return fmt.Errorf("NATS_POISON_TOPIC must differ from NATS_TOPIC")
	}
	if c.NATS.SubscribersCount < 1 {
		return fmt.Errorf("NATS_SUBSCRIBERS must be positive, got %d", c.NATS.SubscribersCount)
	}
	if c.NATS.StreamName == "" || len(c.NATS.StreamSubjects) == 0 {
		return fmt.Errorf("nats stream name and subjects are required")
	}
	return nil
}

func (c *Config) validateWeather() error {
	if !c.Weather.Enabled {
		return nil
	}
	u, err := url.Parse(c.Weather.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("WEATHER_URL must be an absolute URL, got %q", c.Weather.BaseURL)
	}
	if c.Weather.Timeout <= 0 {
		return fmt.Errorf("WEATHER_TIMEOUT must be positive, got %v", c.Weather.Timeout)
	}
	return nil
}

func (c *Config) validateServer() error {
	if c.Server.Addr == "" {
		return nil
	}
	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("OPS_SHUTDOWN_TIMEOUT must be positive, got %v", c.Server.ShutdownTimeout)
	}
	return nil
}
