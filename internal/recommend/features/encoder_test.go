// Thread - Wardrobe Outfit Recommendation Engine
// Copyright 2026 The Thread Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mdcscry/thread

package features

import (
	"math"
	"testing"

	"github.com/mdcscry/thread/internal/models"
)

func TestEncode_Width(t *testing.T) {
	tests := []struct {
		name  string
		item  models.Item
		ctx   models.Context
		peers []models.Item
	}{
		{
			name: "empty item and context",
			item: models.Item{},
			ctx:  models.Context{},
		},
		{
			name: "fully populated item with peers",
			item: models.Item{
				Category:     models.CategoryTop,
				Subcategory:  "Blouse",
				PrimaryColor: "#1f2a44",
				Pattern:      "striped",
				Material:     "silk",
				Formality:    7,
				EMAScore:     models.Float64(0.9),
			},
			ctx: models.Context{Occasion: "work", Season: "fall", TimeOfDay: "morning"},
			peers: []models.Item{
				{Category: models.CategoryBottom, PrimaryColor: "#000000"},
				{Category: models.CategoryShoes, PrimaryColor: "#8b4513", EMAScore: models.Float64(0.2)},
			},
		},
		{
			name: "garbage values",
			item: models.Item{
				Subcategory:  "spaceship",
				PrimaryColor: "not-a-color",
				Pattern:      "???",
				Material:     "vibranium",
				Formality:    42,
				EMAScore:     models.Float64(math.NaN()),
			},
			ctx: models.Context{Occasion: "moon landing", FormalityTarget: 3},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := Encode(&tt.item, tt.ctx, tt.peers)
			if len(v) != Dim {
				t.Fatalf("len(v) = %d, want %d", len(v), Dim)
			}
			for i, x := range v {
				if math.IsNaN(x) || math.IsInf(x, 0) {
					t.Errorf("v[%d] = %v, want finite", i, x)
				}
			}
		})
	}
}

func TestEncode_Defaults(t *testing.T) {
	v := Encode(&models.Item{}, models.Context{}, nil)

	// Unknown subcategory and category land on the T-Shirt slot.
	if v[offSubcategory] != 1 {
		t.Errorf("T-Shirt slot = %v, want 1", v[offSubcategory])
	}

	gray := 128.0 / 255
	for i := 0; i < 3; i++ {
		if math.Abs(v[offRGB+i]-gray) > 1e-9 {
			t.Errorf("rgb[%d] = %v, want %v", i, v[offRGB+i], gray)
		}
	}

	for i := offPattern; i < offEMA; i++ {
		if v[i] != 0 {
			t.Errorf("v[%d] = %v, want 0 for missing pattern/material", i, v[i])
		}
	}
	if v[offEMA] != DefaultEMA {
		t.Errorf("ema = %v, want %v", v[offEMA], DefaultEMA)
	}
	for _, off := range []int{offHarmony, offDiversity, offPeerEMA} {
		if v[off] != 0.5 {
			t.Errorf("v[%d] = %v, want 0.5 with no peers", off, v[off])
		}
	}
}

func TestEncode_OneHots(t *testing.T) {
	item := models.Item{
		Category:    models.CategoryShoes,
		Subcategory: "Shoes",
		Pattern:     "Polka Dot",
		Material:    "Cashmere",
	}
	ctx := models.Context{Occasion: "Formal", Season: "winter", TimeOfDay: "evening"}
	v := Encode(&item, ctx, nil)

	checks := []struct {
		name string
		idx  int
	}{
		{"sneakers alias", offSubcategory + 12},
		{"polka_dot", offPattern + 4},
		{"cashmere", offMaterial + 9},
		{"formal", offOccasion + 3},
		{"winter", offSeason + 3},
		{"evening", offTime + 2},
	}
	for _, c := range checks {
		if v[c.idx] != 1 {
			t.Errorf("%s: v[%d] = %v, want 1", c.name, c.idx, v[c.idx])
		}
	}

	var hot float64
	for i := offOccasion; i < offHarmony; i++ {
		hot += v[i]
	}
	if hot != 3 {
		t.Errorf("context one-hot sum = %v, want 3", hot)
	}
}

func TestEncode_UnknownOccasionIsZero(t *testing.T) {
	v := Encode(&models.Item{}, models.Context{Occasion: "dinner"}, nil)
	for i := offOccasion; i < offSeason; i++ {
		if v[i] != 0 {
			t.Errorf("v[%d] = %v, want 0 for occasion outside the one-hot vocabulary", i, v[i])
		}
	}
}

func TestColorHarmony(t *testing.T) {
	red := models.Item{PrimaryColor: "#ff0000"}

	tests := []struct {
		name    string
		peer    string
		wantMin float64
		wantMax float64
	}{
		{"complementary", "#00ffff", 0.85, 1},
		{"clash zone", "#80ff00", 0, 0.5},
		{"near identical", "#ff1100", 0.9, 0.9},
		{"neutral peer", "#777777", 0.8, 0.8},
		{"triadic", "#0000ff", 0.75, 0.75},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ColorHarmony(&red, []models.Item{{PrimaryColor: tt.peer}})
			if got < tt.wantMin || got > tt.wantMax {
				t.Errorf("ColorHarmony(#ff0000, %s) = %v, want in [%v, %v]", tt.peer, got, tt.wantMin, tt.wantMax)
			}
		})
	}
}

func TestFormalityMatch(t *testing.T) {
	tests := []struct {
		name string
		item models.Item
		ctx  models.Context
		want float64
	}{
		{"exact", models.Item{Formality: 6}, models.Context{Occasion: "work"}, 1},
		{"four apart", models.Item{Formality: 2}, models.Context{FormalityTarget: 6}, 0.6},
		{"category fallback", models.Item{Subcategory: "Heels"}, models.Context{Occasion: "formal"}, 0.9},
		{"both unknown", models.Item{Category: models.CategoryBag}, models.Context{}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FormalityMatch(&tt.item, &tt.ctx)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("FormalityMatch() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCategoryDiversityAndPeerEMA(t *testing.T) {
	peers := []models.Item{
		{Category: models.CategoryBottom, EMAScore: models.Float64(1)},
		{Category: models.CategoryBottom},
		{Category: models.CategoryShoes, EMAScore: models.Float64(0)},
		{Category: models.CategoryBag, EMAScore: models.Float64(0.5)},
	}

	if got := CategoryDiversity(peers); got != 0.75 {
		t.Errorf("CategoryDiversity() = %v, want 0.75", got)
	}
	if got := MeanPeerEMA(peers); got != 0.5 {
		t.Errorf("MeanPeerEMA() = %v, want 0.5", got)
	}
}

func TestPeers(t *testing.T) {
	items := []models.Item{{ID: "a"}, {ID: "b"}, {ID: "c"}}
	got := Peers(items, 1)
	if len(got) != 2 || got[0].ID != "a" || got[1].ID != "c" {
		t.Errorf("Peers() = %v, want [a c]", got)
	}
}
