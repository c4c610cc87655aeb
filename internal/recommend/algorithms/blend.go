// Thread - Wardrobe Outfit Recommendation Engine
// Copyright 2026 The Thread Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mdcscry/thread

package algorithms

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/mdcscry/thread/internal/models"
	"github.com/mdcscry/thread/internal/recommend/features"
)

// Scoring methods reported with each blended score.
const (
	MethodEMA   = "ema"
	MethodBlend = "blend"
)

// BlendResult is a blended outfit score and how it was produced.
type BlendResult struct {
	Score  float64 `json:"score"`
	EMA    float64 `json:"ema"`
	NN     float64 `json:"nn,omitempty"`
	Weight float64 `json:"weight"`
	Method string  `json:"method"`
}

// ModelSource resolves a user's trained model.
type ModelSource interface {
	Model(ctx context.Context, userID string) (*Model, error)
}

// BlendedScorer mixes the EMA mean with the trained network score.
type BlendedScorer struct {
	models ModelSource
	logger zerolog.Logger
}

// NewBlendedScorer creates a blended scorer. A nil source scores EMA only.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewBlendedScorer(src ModelSource, logger zerolog.Logger) *BlendedScorer {
	return &BlendedScorer{
		models: src,
		logger: logger.With().Str("component", "blended_scorer").Logger(),
	}
}

// EMAScore is the mean item EMA score, counting unset scores as 0.5.
func EMAScore(items []models.Item) float64 {
	if len(items) == 0 {
		return features.DefaultEMA
	}
	var sum float64
	for i := range items {
		sum += items[i].Score(features.DefaultEMA)
	}
	return sum / float64(len(items))
}

// Resolve looks up the user's model once per request. A missing model or a
// load failure returns nil; failures are logged, never raised.
func (b *BlendedScorer) Resolve(ctx context.Context, userID string) *Model {
	if b.models == nil {
		return nil
	}
	m, err := b.models.Model(ctx, userID)
	if err != nil {
		if !errors.Is(err, ErrModelNotFound) {
			b.logger.Warn().Err(err).Str("user_id", userID).Msg("model load failed, scoring with EMA only")
		}
		return nil
	}
	return m
}

// Score blends an outfit's EMA mean with the model's leave-one-out network
// score as (1-w)*ema + w*nn, where nn is the mean per-item prediction used
// as is. Any scoring failure falls back to the EMA score.
//
//nolint:gocritic // hugeParam: context passed by value for immutability
func (b *BlendedScorer) Score(m *Model, items []models.Item, c models.Context) (res BlendResult) {
	ema := EMAScore(items)
	res = BlendResult{Score: ema, EMA: ema, Method: MethodEMA}

	if m == nil {
		return res
	}
	weight := m.Weight()
	if weight <= 0 {
		return res
	}

	defer func() {
		if r := recover(); r != nil {
			b.logger.Warn().Str("user_id", m.UserID).Interface("panic", r).Msg("network scoring panicked, using EMA")
			res = BlendResult{Score: ema, EMA: ema, Method: MethodEMA}
		}
	}()

	raw, err := ScoreOutfit(m, items, c)
	if err != nil {
		b.logger.Warn().Err(fmt.Errorf("score outfit: %w", err)).Str("user_id", m.UserID).Msg("network scoring failed, using EMA")
		return res
	}

	res.NN = raw
	res.Weight = weight
	res.Score = (1-weight)*ema + weight*raw
	res.Method = MethodBlend
	return res
}
