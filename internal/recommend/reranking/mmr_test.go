// Thread - Wardrobe Outfit Recommendation Engine
// Copyright 2026 The Thread Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mdcscry/thread

package reranking

import (
	"context"
	"testing"

	"github.com/mdcscry/thread/internal/models"
)

func TestNewMMR(t *testing.T) {
	tests := []struct {
		name       string
		lambda     float64
		wantLambda float64
	}{
		{"normal value", 0.7, 0.7},
		{"zero value", 0.0, 0.0},
		{"one value", 1.0, 1.0},
		{"negative clamped to zero", -0.5, 0.0},
		{"above one clamped to one", 1.5, 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NewMMR(tt.lambda).lambda; got != tt.wantLambda {
				t.Errorf("lambda = %f, want %f", got, tt.wantLambda)
			}
		})
	}
}

func TestMMR_Rerank(t *testing.T) {
	ranked := []models.Outfit{
		outfit(1.0, "a", "b", "s"),
		outfit(0.95, "a", "b", "s2"),
		outfit(0.9, "c", "d", "s3"),
	}

	tests := []struct {
		name     string
		lambda   float64
		k        int
		wantTops []string
	}{
		{"pure score keeps order", 1.0, 3, []string{"a", "a", "c"}},
		{"diversity promotes disjoint outfit", 0.3, 2, []string{"a", "c"}},
		{"k bounded by input", 1.0, 10, []string{"a", "a", "c"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewMMR(tt.lambda).Rerank(context.Background(), ranked, tt.k)
			if len(got) != len(tt.wantTops) {
				t.Fatalf("len = %d, want %d", len(got), len(tt.wantTops))
			}
			for i, want := range tt.wantTops {
				top, _ := got[i].Get(models.SlotTop)
				if top.ID != want {
					t.Errorf("got[%d] top = %s, want %s", i, top.ID, want)
				}
			}
		})
	}
}

func TestJaccard(t *testing.T) {
	a := idSet([]string{"x", "y"})
	b := idSet([]string{"y", "z"})
	if got := jaccard(a, b); got != 1.0/3.0 {
		t.Errorf("jaccard = %v, want 1/3", got)
	}
	if got := jaccard(idSet(nil), idSet(nil)); got != 0 {
		t.Errorf("jaccard(empty) = %v, want 0", got)
	}
}
