// Thread - Wardrobe Outfit Recommendation Engine
// Copyright 2026 The Thread Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mdcscry/thread

package config

import "time"

// Config holds all application configuration.
type Config struct {
	Logging   LoggingConfig   `koanf:"logging"`
	Database  DatabaseConfig  `koanf:"database"`
	Models    ModelsConfig    `koanf:"models"`
	Recommend RecommendConfig `koanf:"recommend"`
	Packing   PackingConfig   `koanf:"packing"`
	NATS      NATSConfig      `koanf:"nats"`
	Weather   WeatherConfig   `koanf:"weather"`
	Server    ServerConfig    `koanf:"server"`
}

// LoggingConfig holds zerolog settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`  // trace, debug, info, warn, error
	Format string `koanf:"format"` // json or console
	Caller bool   `koanf:"caller"`
}

// DatabaseConfig holds DuckDB settings.
type DatabaseConfig struct {
	// Path is the database file, or ":memory:".
	Path string `koanf:"path"`

	// MaxMemory is the DuckDB memory limit, e.g. "1GB".
	MaxMemory string `koanf:"max_memory"`

	// Threads is the DuckDB worker thread count. Zero uses all CPUs.
	Threads int `koanf:"threads"`

	// PreserveInsertionOrder keeps result order stable without ORDER BY at
	// some memory cost.
	PreserveInsertionOrder bool `koanf:"preserve_insertion_order"`

	// SkipIndexes skips secondary index creation (bulk loads, tests).
	SkipIndexes bool `koanf:"skip_indexes"`
}

// ModelsConfig holds the trained model store and cache settings.
type ModelsConfig struct {
	// Dir is the Badger directory for model artifacts.
	Dir string `koanf:"dir"`

	// InMemory keeps models in memory only.
	InMemory bool `koanf:"in_memory"`

	// KeepVersions prunes older model versions per user. Zero keeps all.
	KeepVersions int `koanf:"keep_versions"`

	// CacheSize bounds the in-memory model cache.
	CacheSize int `koanf:"cache_size"`

	// CacheTTL expires cached models. Zero keeps them until evicted.
	CacheTTL time.Duration `koanf:"cache_ttl"`
}

// RecommendConfig holds generation and training settings.
type RecommendConfig struct {
	// Seed roots every random source. Zero uses a time-derived seed.
	Seed int64 `koanf:"seed"`

	DefaultCandidates int     `koanf:"default_candidates"`
	MaxCandidates     int     `koanf:"max_candidates"`
	DefaultLimit      int     `koanf:"default_limit"`
	MaxLimit          int     `koanf:"max_limit"`
	ScoreConcurrency  int     `koanf:"score_concurrency"`
	MMRLambda         float64 `koanf:"mmr_lambda"`

	MinSamples     int           `koanf:"min_samples"`
	MaxEpochs      int           `koanf:"max_epochs"`
	Patience       int           `koanf:"patience"`
	LearningRate   float64       `koanf:"learning_rate"`
	TrainTimeout   time.Duration `koanf:"train_timeout"`
	MinNewFeedback int           `koanf:"min_new_feedback"`

	// RetrainInterval is how often the retrain loop runs. Zero disables it.
	RetrainInterval time.Duration `koanf:"retrain_interval"`

	// TrainOnStartup runs one retrain pass when the service starts.
	TrainOnStartup bool `koanf:"train_on_startup"`
}

// PackingConfig holds trip packing optimizer settings.
type PackingConfig struct {
	Restarts           int `koanf:"restarts"`
	ScanWindow         int `koanf:"scan_window"`
	OutfitsPerActivity int `koanf:"outfits_per_activity"`
	DefaultMaxItems    int `koanf:"default_max_items"`
}

// NATSConfig holds the feedback consumer settings.
type NATSConfig struct {
	Enabled          bool          `koanf:"enabled"`
	URL              string        `koanf:"url"`
	Topic            string        `koanf:"topic"`
	StreamName       string        `koanf:"stream_name"`
	StreamSubjects   []string      `koanf:"stream_subjects"`
	StreamMaxAge     time.Duration `koanf:"stream_max_age"`
	DurableName      string        `koanf:"durable_name"`
	QueueGroup       string        `koanf:"queue_group"`
	SubscribersCount int           `koanf:"subscribers_count"`
	MaxDeliver       int           `koanf:"max_deliver"`
	AckWait          time.Duration `koanf:"ack_wait"`

	RetryMaxRetries      int           `koanf:"retry_max_retries"`
	RetryInitialInterval time.Duration `koanf:"retry_initial_interval"`
	RetryMaxInterval     time.Duration `koanf:"retry_max_interval"`
	PoisonTopic          string        `koanf:"poison_topic"`
	ThrottlePerSecond    int64         `koanf:"throttle_per_second"`

	DedupCapacity int           `koanf:"dedup_capacity"`
	DedupTTL      time.Duration `koanf:"dedup_ttl"`
}

// WeatherConfig holds the weather client settings.
type WeatherConfig struct {
	Enabled           bool          `koanf:"enabled"`
	BaseURL           string        `koanf:"base_url"`
	Timeout           time.Duration `koanf:"timeout"`
	CacheTTL          time.Duration `koanf:"cache_ttl"`
	RequestsPerSecond float64       `koanf:"requests_per_second"`
	Burst             int           `koanf:"burst"`
	FailureThreshold  uint32        `koanf:"failure_threshold"`
	OpenTimeout       time.Duration `koanf:"open_timeout"`
}

// ServerConfig holds the ops HTTP listener settings.
type ServerConfig struct {
	// Addr is the listen address for /metrics and /healthz. Empty disables it.
	Addr            string        `koanf:"addr"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}
