// Thread - Wardrobe Outfit Recommendation Engine
// Copyright 2026 The Thread Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mdcscry/thread

package eventprocessor

import (
	"errors"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("DefaultConfig().Validate() error = %v", err)
	}
	if cfg.Enabled {
		t.Error("feedback pipeline enabled by default")
	}
	if cfg.Subscriber.StreamName != cfg.Stream.Name {
		t.Errorf("subscriber binds %q, stream is %q", cfg.Subscriber.StreamName, cfg.Stream.Name)
	}
	if cfg.Subscriber.SubscribersCount != 1 {
		t.Errorf("SubscribersCount = %d, want 1 for ordered EMA updates", cfg.Subscriber.SubscribersCount)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty url", func(c *Config) { c.URL = "" }},
		{"empty topic", func(c *Config) { c.Topic = "" }},
		{"no subjects", func(c *Config) { c.Stream.Subjects = nil }},
		{"zero subscribers", func(c *Config) { c.Subscriber.SubscribersCount = 0 }},
		{"poison equals topic", func(c *Config) { c.Router.PoisonQueueTopic = c.Topic }},
		{"zero dedup capacity", func(c *Config) { c.DedupCapacity = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			if err := cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("Validate() error = %v, want ErrInvalidConfig", err)
			}
		})
	}
}
