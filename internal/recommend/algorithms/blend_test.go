// Thread - Wardrobe Outfit Recommendation Engine
// Copyright 2026 The Thread Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mdcscry/thread

package algorithms

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/rs/zerolog"

	"github.com/mdcscry/thread/internal/models"
	"github.com/mdcscry/thread/internal/recommend/features"
)

// constantModel returns a model whose network always predicts out.
func constantModel(t *testing.T, out float64, samples int, loss float64) *Model {
	t.Helper()
	net, err := NewNetwork(DefaultNetworkConfig(features.Dim), rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("NewNetwork() error = %v", err)
	}
	for i := range net.Params {
		net.Params[i] = 0
	}
	net.Params[net.layout().b3] = out
	return &Model{UserID: "u1", Version: 1, Network: net, SampleCount: samples, ValidationLoss: loss}
}

type stubSource struct {
	model *Model
	err   error
}

func (s stubSource) Model(ctx context.Context, userID string) (*Model, error) {
	return s.model, s.err
}

func TestEMAScore(t *testing.T) {
	tests := []struct {
		name  string
		items []models.Item
		want  float64
	}{
		{"empty", nil, 0.5},
		{"unset counts as half", []models.Item{{}, {EMAScore: models.Float64(1)}}, 0.75},
		{"mixed", []models.Item{{EMAScore: models.Float64(0.2)}, {}}, 0.35},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EMAScore(tt.items); math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("EMAScore() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBlendedScorer_Score(t *testing.T) {
	items := []models.Item{
		{ID: "a", Category: models.CategoryTop, EMAScore: models.Float64(0.2)},
		{ID: "b", Category: models.CategoryBottom},
	}
	ctx := models.DefaultContext()
	b := NewBlendedScorer(nil, zerolog.Nop())

	corrupt := constantModel(t, 0.6, 1500, 0.1)
	corrupt.Network.Params = corrupt.Network.Params[:10]

	tests := []struct {
		name       string
		model      *Model
		wantScore  float64
		wantMethod string
	}{
		{"no model", nil, 0.35, MethodEMA},
		{"model below blend gate", constantModel(t, 0.6, 80, 0.0), 0.35, MethodEMA},
		// weight 0.9: 0.1*0.35 + 0.9*0.6
		{"confident model", constantModel(t, 0.6, 1500, 0.1), 0.575, MethodBlend},
		{"negative prediction", constantModel(t, -0.5, 1500, 0.1), -0.415, MethodBlend},
		{"corrupt network falls back", corrupt, 0.35, MethodEMA},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := b.Score(tt.model, items, ctx)
			if math.Abs(got.Score-tt.wantScore) > 1e-9 {
				t.Errorf("Score = %v, want %v", got.Score, tt.wantScore)
			}
			if got.Method != tt.wantMethod {
				t.Errorf("Method = %q, want %q", got.Method, tt.wantMethod)
			}
			if got.EMA != 0.35 {
				t.Errorf("EMA = %v, want 0.35", got.EMA)
			}
		})
	}
}

func TestBlendedScorer_UsesRawNetworkScore(t *testing.T) {
	b := NewBlendedScorer(nil, zerolog.Nop())
	items := []models.Item{{ID: "a", EMAScore: models.Float64(0.4)}}

	tests := []struct {
		name string
		out  float64
	}{
		{"inside label range", 0.25},
		{"above label range", 1.5},
		{"below zero", -0.8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := constantModel(t, tt.out, 1500, 0.1)
			got := b.Score(m, items, models.DefaultContext())
			if math.Abs(got.NN-tt.out) > 1e-9 {
				t.Errorf("NN = %v, want %v", got.NN, tt.out)
			}
			want := (1-got.Weight)*0.4 + got.Weight*tt.out
			if math.Abs(got.Score-want) > 1e-9 {
				t.Errorf("Score = %v, want %v", got.Score, want)
			}
		})
	}
}

func TestBlendedScorer_Resolve(t *testing.T) {
	m := &Model{UserID: "u1"}
	tests := []struct {
		name string
		src  ModelSource
		want *Model
	}{
		{"nil source", nil, nil},
		{"found", stubSource{model: m}, m},
		{"not found", stubSource{err: ErrModelNotFound}, nil},
		{"load error", stubSource{err: errors.New("disk gone")}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBlendedScorer(tt.src, zerolog.Nop())
			if got := b.Resolve(context.Background(), "u1"); got != tt.want {
				t.Errorf("Resolve() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestModelCache(t *testing.T) {
	c := NewModelCache(2, 0)

	if _, ok := c.Get("u1"); ok {
		t.Fatal("empty cache returned a model")
	}

	first := &Model{UserID: "u1", Version: 1}
	c.Put(first)
	second := &Model{UserID: "u1", Version: 2}
	old, replaced := c.Swap(second)
	if !replaced || old != first {
		t.Errorf("Swap() = (%v, %v), want previous model", old, replaced)
	}
	if got, _ := c.Get("u1"); got != second {
		t.Errorf("Get() = %v, want swapped model", got)
	}

	c.Put(&Model{UserID: "u2"})
	c.Put(&Model{UserID: "u3"})
	if c.Len() != 2 {
		t.Errorf("Len() = %d, want 2", c.Len())
	}
	if _, ok := c.Get("u1"); ok {
		t.Error("least recently used model was not evicted")
	}

	if !c.Invalidate("u3") {
		t.Error("Invalidate() = false for cached model")
	}
	if c.Invalidate("u3") {
		t.Error("Invalidate() = true for missing model")
	}
}

func TestModelCache_PutKeepsNewerVersion(t *testing.T) {
	c := NewModelCache(4, 0)
	newer := &Model{UserID: "u1", Version: 2}
	c.Swap(newer)

	if c.Put(&Model{UserID: "u1", Version: 1}) {
		t.Error("Put() stored an older version over a newer one")
	}
	if got, _ := c.Get("u1"); got != newer {
		t.Errorf("Get() = %+v, want version 2", got)
	}

	latest := &Model{UserID: "u1", Version: 3}
	if !c.Put(latest) {
		t.Error("Put() rejected a newer version")
	}
	if got, _ := c.Get("u1"); got != latest {
		t.Errorf("Get() = %+v, want version 3", got)
	}
}
