// Thread - Wardrobe Outfit Recommendation Engine
// Copyright 2026 The Thread Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mdcscry/thread

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"thread.yaml",
	"thread.yml",
	"/etc/thread/config.yaml",
	"/etc/thread/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config with all defaults. These are applied
// first, then overridden by the config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Database: DatabaseConfig{
			Path:      "/data/thread.duckdb",
			MaxMemory: "1GB",
		},
		Models: ModelsConfig{
			Dir:          "/data/models",
			KeepVersions: 3,
			CacheSize:    256,
		},
		Recommend: RecommendConfig{
			DefaultCandidates: 50,
			MaxCandidates:     500,
			DefaultLimit:      10,
			MaxLimit:          50,
			ScoreConcurrency:  8,
			MMRLambda:         1.0,
			MinSamples:        50,
			MaxEpochs:         100,
			Patience:          10,
			LearningRate:      0.01,
			TrainTimeout:      2 * time.Minute,
			MinNewFeedback:    10,
			RetrainInterval:   6 * time.Hour,
			TrainOnStartup:    false,
		},
		Packing: PackingConfig{
			Restarts:           20,
			ScanWindow:         50,
			OutfitsPerActivity: 5,
			DefaultMaxItems:    12,
		},
		NATS: NATSConfig{
			Enabled:              false,
			URL:                  "nats://127.0.0.1:4222",
			Topic:                "feedback.events",
			StreamName:           "THREAD_FEEDBACK",
			StreamSubjects:       []string{"feedback.>"},
			StreamMaxAge:         30 * 24 * time.Hour,
			DurableName:          "thread-feedback",
			QueueGroup:           "thread",
			SubscribersCount:     1,
			MaxDeliver:           5,
			AckWait:              30 * time.Second,
			RetryMaxRetries:      5,
			RetryInitialInterval: time.Second,
			RetryMaxInterval:     time.Minute,
			PoisonTopic:          "feedback.poison",
			DedupCapacity:        10000,
			DedupTTL:             time.Hour,
		},
		Weather: WeatherConfig{
			Enabled:           false,
			BaseURL:           "http://127.0.0.1:8088",
			Timeout:           3 * time.Second,
			CacheTTL:          15 * time.Minute,
			RequestsPerSecond: 5,
			Burst:             10,
			FailureThreshold:  5,
			OpenTimeout:       30 * time.Second,
		},
		Server: ServerConfig{
			Addr:            ":9464",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    10 * time.Second,
			ShutdownTimeout: 15 * time.Second,
		},
	}
}

// Load loads configuration using koanf with layered sources:
//
//  1. Defaults: Built-in sensible defaults
//  2. Config File: Optional YAML config file (if exists)
//  3. Environment Variables: Override any mapped setting
//
// The result is validated before it is returned.
func Load() (*Config, error) {
	k := koanf.New(".")

	// Layer 1: Load defaults from struct
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: Load config file (optional)
	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: Load environment variables (highest priority)
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile searches for a config file in the default paths.
// Returns the path to the first file found, or empty string if none found.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths defines which config paths should be parsed as comma-separated slices
var sliceConfigPaths = []string{
	"nats.stream_subjects",
}

// processSliceFields converts comma-separated string values to slices for known slice fields.
// Env vars arrive as strings while the config expects slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envMappings maps environment variable names (lowercased) to koanf paths.
var envMappings = map[string]string{
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",

	"duckdb_path":                     "database.path",
	"duckdb_max_memory":               "database.max_memory",
	"duckdb_threads":                  "database.threads",
	"duckdb_preserve_insertion_order": "database.preserve_insertion_order",

	"models_dir":           "models.dir",
	"models_in_memory":     "models.in_memory",
	"models_keep_versions": "models.keep_versions",
	"model_cache_size":     "models.cache_size",
	"model_cache_ttl":      "models.cache_ttl",

	"recommend_seed":              "recommend.seed",
	"recommend_candidates":        "recommend.default_candidates",
	"recommend_max_candidates":    "recommend.max_candidates",
	"recommend_limit":             "recommend.default_limit",
	"recommend_score_concurrency": "recommend.score_concurrency",
	"recommend_mmr_lambda":        "recommend.mmr_lambda",
	"train_min_samples":           "recommend.min_samples",
	"train_max_epochs":            "recommend.max_epochs",
	"train_timeout":               "recommend.train_timeout",
	"train_min_new_feedback":      "recommend.min_new_feedback",
	"retrain_interval":            "recommend.retrain_interval",
	"train_on_startup":            "recommend.train_on_startup",

	"packing_restarts":    "packing.restarts",
	"packing_scan_window": "packing.scan_window",
	"packing_max_items":   "packing.default_max_items",

	"nats_enabled":           "nats.enabled",
	"nats_url":               "nats.url",
	"nats_topic":             "nats.topic",
	"nats_stream":            "nats.stream_name",
	"nats_stream_subjects":   "nats.stream_subjects",
	"nats_durable_name":      "nats.durable_name",
	"nats_queue_group":       "nats.queue_group",
	"nats_subscribers":       "nats.subscribers_count",
	"nats_max_deliver":       "nats.max_deliver",
	"nats_retry_max_retries": "nats.retry_max_retries",
	"nats_poison_topic":      "nats.poison_topic",
	"nats_throttle":          "nats.throttle_per_second",

	"weather_enabled":   "weather.enabled",
	"weather_url":       "weather.base_url",
	"weather_timeout":   "weather.timeout",
	"weather_rps":       "weather.requests_per_second",
	"weather_cache_ttl": "weather.cache_ttl",

	"ops_addr":             "server.addr",
	"ops_shutdown_timeout": "server.shutdown_timeout",
}

// envTransformFunc transforms environment variable names to koanf config paths.
//
// Examples:
//   - DUCKDB_PATH -> database.path
//   - NATS_ENABLED -> nats.enabled
//   - RETRAIN_INTERVAL -> recommend.retrain_interval
//
// Unmapped variables are skipped.
func envTransformFunc(key string) string {
	if mapped, ok := envMappings[strings.ToLower(key)]; ok {
		return mapped
	}
	return ""
}
