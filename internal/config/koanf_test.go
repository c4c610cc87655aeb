// Thread - Wardrobe Outfit Recommendation Engine
// Copyright 2026 The Thread Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mdcscry/thread

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// TestDefaultConfig verifies that defaultConfig() returns valid defaults
func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults do not validate: %v", err)
	}
	if cfg.NATS.Enabled || cfg.Weather.Enabled {
		t.Error("optional collaborators should be disabled by default")
	}
	if cfg.Packing.Restarts != 20 {
		t.Errorf("Packing.Restarts = %d, want 20", cfg.Packing.Restarts)
	}
	if cfg.Recommend.MinSamples != 50 {
		t.Errorf("Recommend.MinSamples = %d, want 50", cfg.Recommend.MinSamples)
	}
	if cfg.NATS.SubscribersCount != 1 {
		t.Errorf("NATS.SubscribersCount = %d, want 1", cfg.NATS.SubscribersCount)
	}
}

func TestEnvTransformFunc(t *testing.T) {
	tests := []struct {
		env  string
		want string
	}{
		{"DUCKDB_PATH", "database.path"},
		{"NATS_ENABLED", "nats.enabled"},
		{"RETRAIN_INTERVAL", "recommend.retrain_interval"},
		{"weather_url", "weather.base_url"},
		{"HOME", ""},
		{"PATH", ""},
	}
	for _, tt := range tests {
		if got := envTransformFunc(tt.env); got != tt.want {
			t.Errorf("envTransformFunc(%q) = %q, want %q", tt.env, got, tt.want)
		}
	}
}

func TestFindConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.yaml")
	if err := os.WriteFile(path, []byte("logging:\n  level: debug\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	t.Setenv(ConfigPathEnvVar, path)
	if got := findConfigFile(); got != path {
		t.Errorf("findConfigFile() = %q, want %q", got, path)
	}

	t.Setenv(ConfigPathEnvVar, filepath.Join(dir, "missing.yaml"))
	if got := findConfigFile(); got != "" {
		t.Errorf("findConfigFile() = %q for missing file, want empty", got)
	}
}

func TestLoad_EnvVars(t *testing.T) {
	t.Setenv(ConfigPathEnvVar, filepath.Join(t.TempDir(), "none.yaml"))
	t.Setenv("DUCKDB_PATH", "/tmp/thread-test.duckdb")
	t.Setenv("RETRAIN_INTERVAL", "2h")
	t.Setenv("NATS_ENABLED", "true")
	t.Setenv("NATS_STREAM_SUBJECTS", "feedback.>, legacy.feedback.>")
	t.Setenv("RECOMMEND_MMR_LAMBDA", "0.7")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Database.Path != "/tmp/thread-test.duckdb" {
		t.Errorf("Database.Path = %q", cfg.Database.Path)
	}
	if cfg.Recommend.RetrainInterval != 2*time.Hour {
		t.Errorf("RetrainInterval = %v, want 2h", cfg.Recommend.RetrainInterval)
	}
	if !cfg.NATS.Enabled {
		t.Error("NATS.Enabled = false, want true")
	}
	if len(cfg.NATS.StreamSubjects) != 2 || cfg.NATS.StreamSubjects[1] != "legacy.feedback.>" {
		t.Errorf("StreamSubjects = %v", cfg.NATS.StreamSubjects)
	}
	if cfg.Recommend.MMRLambda != 0.7 {
		t.Errorf("MMRLambda = %v, want 0.7", cfg.Recommend.MMRLambda)
	}
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "thread.yaml")
	yaml := `
logging:
  level: debug
  format: console
packing:
  restarts: 7
weather:
  enabled: true
  base_url: http://weather.internal:8088
  timeout: 2s
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(ConfigPathEnvVar, path)
	t.Setenv("LOG_LEVEL", "warn")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Logging.Level != "warn" {
		t.Errorf("Logging.Level = %q, env should override file", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "console" {
		t.Errorf("Logging.Format = %q, want console from file", cfg.Logging.Format)
	}
	if cfg.Packing.Restarts != 7 {
		t.Errorf("Packing.Restarts = %d, want 7", cfg.Packing.Restarts)
	}
	if !cfg.Weather.Enabled || cfg.Weather.Timeout != 2*time.Second {
		t.Errorf("Weather = %+v", cfg.Weather)
	}
	if cfg.Packing.ScanWindow != 50 {
		t.Errorf("Packing.ScanWindow = %d, default should survive", cfg.Packing.ScanWindow)
	}
}

func TestLoad_ValidationFailure(t *testing.T) {
	t.Setenv(ConfigPathEnvVar, filepath.Join(t.TempDir(), "none.yaml"))
	t.Setenv("LOG_LEVEL", "chatty")

	if _, err := Load(); err == nil {
		t.Error("Load() should reject an unknown log level")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }, true},
		{"empty db path", func(c *Config) { c.Database.Path = "" }, true},
		{"in-memory models need no dir", func(c *Config) { c.Models.Dir = ""; c.Models.InMemory = true }, false},
		{"models dir required", func(c *Config) { c.Models.Dir = "" }, true},
		{"candidate bounds", func(c *Config) { c.Recommend.MaxCandidates = 10 }, true},
		{"nats disabled ignores url", func(c *Config) { c.NATS.URL = "" }, false},
		{"nats poison equals topic", func(c *Config) { c.NATS.Enabled = true; c.NATS.PoisonTopic = c.NATS.Topic }, true},
		{"nats no subjects", func(c *Config) { c.NATS.Enabled = true; c.NATS.StreamSubjects = nil }, true},
		{"weather relative url", func(c *Config) { c.Weather.Enabled = true; c.Weather.BaseURL = "/weather" }, true},
		{"ops disabled", func(c *Config) { c.Server.Addr = ""; c.Server.ShutdownTimeout = 0 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
