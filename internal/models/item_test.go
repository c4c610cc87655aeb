// Thread - Wardrobe Outfit Recommendation Engine
// Copyright 2026 The Thread Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mdcscry/thread

package models

import (
	"testing"
	"time"
)

func TestParseCategory(t *testing.T) {
	tests := []struct {
		input string
		want  Category
	}{
		{"Top", CategoryTop},
		{" jeans ", CategoryBottom},
		{"Jumpsuit", CategoryDress},
		{"sneakers", CategoryShoes},
		{"Blazer", CategoryOuterwear},
		{"backpack", CategoryBag},
		{"Scarf", CategoryAccessory},
		{"swimwear", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseCategory(tt.input); got != tt.want {
				t.Errorf("ParseCategory(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestItem_EligibleAndScore(t *testing.T) {
	tests := []struct {
		name string
		item Item
		want bool
	}{
		{"available", Item{}, true},
		{"in laundry", Item{InLaundry: true}, false},
		{"in storage", Item{InStorage: true}, false},
		{"archived", Item{Archived: true}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.item.Eligible(); got != tt.want {
				t.Errorf("Eligible() = %v, want %v", got, tt.want)
			}
		})
	}

	var unscored Item
	if got := unscored.Score(0.5); got != 0.5 {
		t.Errorf("Score() without EMA = %v, want default 0.5", got)
	}
	scored := Item{EMAScore: Float64(0.8)}
	if got := scored.Score(0.5); got != 0.8 {
		t.Errorf("Score() = %v, want 0.8", got)
	}
}

func TestItemPatch_Apply(t *testing.T) {
	worn := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	count, wears, loved := 4, 7, true
	item := Item{ID: "i1", EMAScore: Float64(0.5), EMACount: 3, WearCount: 6}

	patch := ItemPatch{
		EMAScore:   Float64(0.62),
		EMACount:   &count,
		WearCount:  &wears,
		LastWornAt: &worn,
		Loved:      &loved,
	}
	patch.Apply(&item)

	if item.Score(0) != 0.62 || item.EMACount != 4 || item.WearCount != 7 || !item.Loved {
		t.Errorf("patched item = %+v", item)
	}
	if item.LastWornAt == nil || !item.LastWornAt.Equal(worn) {
		t.Errorf("LastWornAt = %v, want %v", item.LastWornAt, worn)
	}

	*patch.EMAScore = 0.1
	if item.Score(0) != 0.62 {
		t.Error("Apply must copy pointer values, not alias them")
	}

	empty := ItemPatch{}
	before := item
	empty.Apply(&item)
	if item.EMACount != before.EMACount || item.WearCount != before.WearCount {
		t.Error("empty patch changed the item")
	}
}

func TestItemFilter_Matches(t *testing.T) {
	base := Item{
		Category:  CategoryTop,
		Formality: 5,
		TempMinF:  Float64(50),
		TempMaxF:  Float64(80),
	}
	with := func(mut func(*Item)) Item {
		it := base
		mut(&it)
		return it
	}

	tests := []struct {
		name   string
		filter ItemFilter
		item   Item
		want   bool
	}{
		{"empty filter", ItemFilter{}, base, true},
		{"temperature inside", ItemFilter{TemperatureF: Float64(65)}, base, true},
		{"temperature below range", ItemFilter{TemperatureF: Float64(40)}, base, false},
		{"temperature above range", ItemFilter{TemperatureF: Float64(90)}, base, false},
		{"no range accepts any temperature", ItemFilter{TemperatureF: Float64(10)},
			with(func(i *Item) { i.TempMinF, i.TempMaxF = nil, nil }), true},
		{"formality within default window", ItemFilter{FormalityTarget: 8}, base, true},
		{"formality outside default window", ItemFilter{FormalityTarget: 9}, base, false},
		{"custom window", ItemFilter{FormalityTarget: 9, FormalityWindow: 4}, base, true},
		{"unknown formality passes", ItemFilter{FormalityTarget: 10},
			with(func(i *Item) { i.Formality = 0 }), true},
		{"category allowed", ItemFilter{Categories: []Category{CategoryShoes, CategoryTop}}, base, true},
		{"category excluded", ItemFilter{Categories: []Category{CategoryShoes}}, base, false},
		{"laundry excluded", ItemFilter{}, with(func(i *Item) { i.InLaundry = true }), false},
		{"laundry included on request", ItemFilter{IncludeUnavailable: true},
			with(func(i *Item) { i.InLaundry = true }), true},
		{"archived never matches", ItemFilter{IncludeUnavailable: true},
			with(func(i *Item) { i.Archived = true }), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.filter.Matches(&tt.item); got != tt.want {
				t.Errorf("Matches() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestItem_OverlapsRange(t *testing.T) {
	item := Item{TempMinF: Float64(40), TempMaxF: Float64(70)}

	tests := []struct {
		name       string
		minF, maxF float64
		want       bool
	}{
		{"inside", 50, 60, true},
		{"touching low edge", 20, 40, true},
		{"entirely colder", 10, 35, false},
		{"entirely warmer", 75, 95, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := item.OverlapsRange(tt.minF, tt.maxF); got != tt.want {
				t.Errorf("OverlapsRange(%v, %v) = %v, want %v", tt.minF, tt.maxF, got, tt.want)
			}
		})
	}

	var open Item
	if !open.OverlapsRange(-20, -10) {
		t.Error("item without a range should overlap everything")
	}
}
