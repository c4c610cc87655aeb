// Thread - Wardrobe Outfit Recommendation Engine
// Copyright 2026 The Thread Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mdcscry/thread

package recommend

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/mdcscry/thread/internal/recommend/algorithms"
	"github.com/mdcscry/thread/internal/recommend/features"
	"github.com/mdcscry/thread/internal/recommend/generator"
	"github.com/mdcscry/thread/internal/recommend/packing"
)

// Config contains all engine configuration.
type Config struct {
	// Generation controls candidate generation and scoring.
	Generation GenerationConfig `json:"generation"`

	// Diversity controls post-ranking diversification.
	Diversity DiversityConfig `json:"diversity"`

	// Training controls the per-user preference network.
	Training TrainingConfig `json:"training"`

	// Packing controls the trip packing optimizer.
	Packing PackingConfig `json:"packing"`

	// WeatherTimeout bounds a weather lookup during generation.
	// Default: 3s.
	WeatherTimeout time.Duration `json:"weather_timeout"`

	// Seed is the root of every random source the engine creates.
	// Zero uses a time-derived seed.
	Seed int64 `json:"seed"`
}

// GenerationConfig contains outfit generation parameters.
type GenerationConfig struct {
	// DefaultCandidates is how many candidates are generated when the request
	// does not say. Default: 50.
	DefaultCandidates int `json:"default_candidates"`

	// MaxCandidates caps the per-request candidate count.
	// Default: 500.
	MaxCandidates int `json:"max_candidates"`

	// DefaultLimit is how many ranked outfits are returned when the request
	// does not say. Default: 10.
	DefaultLimit int `json:"default_limit"`

	// MaxLimit caps the per-request result size.
	// Default: 50.
	MaxLimit int `json:"max_limit"`

	// ScoreConcurrency bounds concurrent candidate scoring.
	// Default: 8.
	ScoreConcurrency int `json:"score_concurrency"`

	// OuterwearBelowF is the temperature under which outerwear may be added.
	// Default: 60.
	OuterwearBelowF float64 `json:"outerwear_below_f"`

	// AccessoryProbability is the chance a candidate gets accessories.
	// Default: 0.4.
	AccessoryProbability float64 `json:"accessory_probability"`
}

// DiversityConfig contains diversification parameters.
type DiversityConfig struct {
	// MMRLambda balances relevance against outfit overlap before the item
	// cap is applied. 1.0 disables MMR.
	// Default: 1.0.
	MMRLambda float64 `json:"mmr_lambda"`
}

// TrainingConfig contains preference network training parameters.
type TrainingConfig struct {
	// MinSamples gates training. Default: 50.
	MinSamples int `json:"min_samples"`

	// MaxEpochs bounds one training run. Default: 100.
	MaxEpochs int `json:"max_epochs"`

	// Patience is the early-stopping patience in epochs. Default: 10.
	Patience int `json:"patience"`

	// LearningRate for Adam. Default: 0.01.
	LearningRate float64 `json:"learning_rate"`

	// Timeout bounds one training run. Default: 2m.
	Timeout time.Duration `json:"timeout"`

	// ModelCacheSize bounds the number of in-memory models. Default: 256.
	ModelCacheSize int `json:"model_cache_size"`

	// ModelCacheTTL expires cached models. Zero keeps them until evicted.
	ModelCacheTTL time.Duration `json:"model_cache_ttl"`

	// MinNewFeedback is how many untrained events a user needs before the
	// retrain loop picks them up. Default: 10.
	MinNewFeedback int `json:"min_new_feedback"`
}

// PackingConfig contains trip packing parameters.
type PackingConfig struct {
	// Restarts is the number of seeded greedy restarts. Default: 20.
	Restarts int `json:"restarts"`

	// ScanWindow is how many shuffled candidates each greedy step scans.
	// Default: 50.
	ScanWindow int `json:"scan_window"`

	// OutfitsPerActivity bounds the outfits assembled per activity.
	// Default: 5.
	OutfitsPerActivity int `json:"outfits_per_activity"`

	// DefaultMaxItems is the budget when a request does not set one.
	// Default: 12.
	DefaultMaxItems int `json:"default_max_items"`
}

// DefaultConfig returns a Config with sensible production defaults.
func DefaultConfig() *Config {
	gen := generator.DefaultConfig()
	trainer := algorithms.DefaultTrainerConfig()
	pack := packing.DefaultConfig()

	return &Config{
		Generation: GenerationConfig{
			DefaultCandidates:    generator.DefaultTarget,
			MaxCandidates:        500,
			DefaultLimit:         10,
			MaxLimit:             50,
			ScoreConcurrency:     8,
			OuterwearBelowF:      gen.OuterwearBelowF,
			AccessoryProbability: gen.AccessoryProbability,
		},
		Diversity: DiversityConfig{
			MMRLambda: 1.0,
		},
		Training: TrainingConfig{
			MinSamples:     algorithms.MinTrainingSamples,
			MaxEpochs:      trainer.Fit.MaxEpochs,
			Patience:       trainer.Fit.Patience,
			LearningRate:   trainer.Network.LearningRate,
			Timeout:        trainer.Timeout,
			ModelCacheSize: 256,
			MinNewFeedback: 10,
		},
		Packing: PackingConfig{
			Restarts:           pack.Restarts,
			ScanWindow:         pack.ScanWindow,
			OutfitsPerActivity: pack.OutfitsPerActivity,
			DefaultMaxItems:    pack.DefaultMaxItems,
		},
		WeatherTimeout: 3 * time.Second,
	}
}

// Validate checks the configuration for errors.
//
//nolint:gocyclo // validation needs to check many fields
func (c *Config) Validate() error {
	g := &c.Generation
	if g.DefaultCandidates < 1 {
		return fmt.Errorf("generation.default_candidates must be positive, got %d", g.DefaultCandidates)
	}
	if g.MaxCandidates < g.DefaultCandidates {
		return fmt.Errorf("generation.max_candidates must be >= generation.default_candidates, got %d < %d", g.MaxCandidates, g.DefaultCandidates)
	}
	if g.DefaultLimit < 1 {
		return fmt.Errorf("generation.default_limit must be positive, got %d", g.DefaultLimit)
	}
	if g.MaxLimit < g.DefaultLimit {
		return fmt.Errorf("generation.max_limit must be >= generation.default_limit, got %d < %d", g.MaxLimit, g.DefaultLimit)
	}
	if g.ScoreConcurrency < 1 {
		return fmt.Errorf("generation.score_concurrency must be positive, got %d", g.ScoreConcurrency)
	}
	if g.AccessoryProbability < 0 || g.AccessoryProbability > 1 {
		return fmt.Errorf("generation.accessory_probability must be in [0, 1], got %f", g.AccessoryProbability)
	}

	if c.Diversity.MMRLambda < 0 || c.Diversity.MMRLambda > 1 {
		return fmt.Errorf("diversity.mmr_lambda must be in [0, 1], got %f", c.Diversity.MMRLambda)
	}

	t := &c.Training
	if t.MinSamples < 1 {
		return fmt.Errorf("training.min_samples must be positive, got %d", t.MinSamples)
	}
	if t.MaxEpochs < 1 {
		return fmt.Errorf("training.max_epochs must be positive, got %d", t.MaxEpochs)
	}
	if t.Patience < 1 {
		return fmt.Errorf("training.patience must be positive, got %d", t.Patience)
	}
	if t.LearningRate <= 0 {
		return fmt.Errorf("training.learning_rate must be positive, got %f", t.LearningRate)
	}
	if t.Timeout <= 0 {
		return fmt.Errorf("training.timeout must be positive, got %v", t.Timeout)
	}
	if t.ModelCacheSize < 1 {
		return fmt.Errorf("training.model_cache_size must be positive, got %d", t.ModelCacheSize)
	}
	if t.MinNewFeedback < 1 {
		return fmt.Errorf("training.min_new_feedback must be positive, got %d", t.MinNewFeedback)
	}

	pc := c.PackingConfig()
	if err := pc.Validate(); err != nil {
		return fmt.Errorf("packing: %w", err)
	}

	if c.WeatherTimeout <= 0 {
		return fmt.Errorf("weather_timeout must be positive, got %v", c.WeatherTimeout)
	}

	return nil
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	// All nested structs hold value types only.
	clone := *c
	return &clone
}

// GeneratorConfig maps the generation section onto the candidate generator.
func (c *Config) GeneratorConfig() generator.Config {
	gen := generator.DefaultConfig()
	gen.Target = c.Generation.DefaultCandidates
	gen.OuterwearBelowF = c.Generation.OuterwearBelowF
	gen.AccessoryProbability = c.Generation.AccessoryProbability
	return gen
}

// TrainerConfig maps the training section onto the trained scorer.
func (c *Config) TrainerConfig() algorithms.TrainerConfig {
	tc := algorithms.DefaultTrainerConfig()
	tc.MinSamples = c.Training.MinSamples
	tc.Network = algorithms.DefaultNetworkConfig(features.Dim)
	tc.Network.LearningRate = c.Training.LearningRate
	tc.Fit.MaxEpochs = c.Training.MaxEpochs
	tc.Fit.Patience = c.Training.Patience
	tc.Timeout = c.Training.Timeout
	tc.Seed = c.Seed
	return tc
}

// PackingConfig maps the packing section onto the optimizer.
func (c *Config) PackingConfig() packing.Config {
	return packing.Config{
		Restarts:           c.Packing.Restarts,
		ScanWindow:         c.Packing.ScanWindow,
		OutfitsPerActivity: c.Packing.OutfitsPerActivity,
		DefaultMaxItems:    c.Packing.DefaultMaxItems,
		Seed:               c.Seed,
	}
}

// MarshalJSON implements custom JSON marshaling for duration fields.
func (c *Config) MarshalJSON() ([]byte, error) {
	type Alias Config
	type training struct {
		MinSamples     int     `json:"min_samples"`
		MaxEpochs      int     `json:"max_epochs"`
		Patience       int     `json:"patience"`
		LearningRate   float64 `json:"learning_rate"`
		Timeout        string  `json:"timeout"`
		ModelCacheSize int     `json:"model_cache_size"`
		ModelCacheTTL  string  `json:"model_cache_ttl"`
		MinNewFeedback int     `json:"min_new_feedback"`
	}
	return json.Marshal(&struct {
		*Alias
		Training       training `json:"training"`
		WeatherTimeout string   `json:"weather_timeout"`
	}{
		Alias: (*Alias)(c),
		Training: training{
			MinSamples:     c.Training.MinSamples,
			MaxEpochs:      c.Training.MaxEpochs,
			Patience:       c.Training.Patience,
			LearningRate:   c.Training.LearningRate,
			Timeout:        c.Training.Timeout.String(),
			ModelCacheSize: c.Training.ModelCacheSize,
			ModelCacheTTL:  c.Training.ModelCacheTTL.String(),
			MinNewFeedback: c.Training.MinNewFeedback,
		},
		WeatherTimeout: c.WeatherTimeout.String(),
	})
}
