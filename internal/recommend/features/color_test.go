// Thread - Wardrobe Outfit Recommendation Engine
// Copyright 2026 The Thread Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mdcscry/thread

package features

import (
	"math"
	"testing"
)

func TestParseHex(t *testing.T) {
	tests := []struct {
		in     string
		want   RGB
		wantOK bool
	}{
		{"#ff0000", RGB{255, 0, 0}, true},
		{"00FF7f", RGB{0, 255, 127}, true},
		{"#abc", RGB{0xaa, 0xbb, 0xcc}, true},
		{"", RGB{}, false},
		{"#12345", RGB{}, false},
		{"#gggggg", RGB{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseHex(tt.in)
			if ok != tt.wantOK {
				t.Fatalf("ParseHex(%q) ok = %v, want %v", tt.in, ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Errorf("ParseHex(%q) = %+v, want %+v", tt.in, got, tt.want)
			}
		})
	}
}

func TestRGB_HSL(t *testing.T) {
	tests := []struct {
		hex  string
		want HSL
	}{
		{"#ff0000", HSL{0, 1, 0.5}},
		{"#00ff00", HSL{120, 1, 0.5}},
		{"#0000ff", HSL{240, 1, 0.5}},
		{"#00ffff", HSL{180, 1, 0.5}},
		{"#ffffff", HSL{0, 0, 1}},
		{"#000000", HSL{0, 0, 0}},
		{"#ff00ff", HSL{300, 1, 0.5}},
	}

	for _, tt := range tests {
		t.Run(tt.hex, func(t *testing.T) {
			got := HexToHSL(tt.hex)
			if math.Abs(got.H-tt.want.H) > 1e-6 || math.Abs(got.S-tt.want.S) > 1e-6 || math.Abs(got.L-tt.want.L) > 1e-6 {
				t.Errorf("HexToHSL(%s) = %+v, want %+v", tt.hex, got, tt.want)
			}
		})
	}
}

func TestHueDistance(t *testing.T) {
	tests := []struct {
		h1, h2, want float64
	}{
		{0, 180, 180},
		{10, 350, 20},
		{350, 10, 20},
		{90, 90, 0},
		{0, 270, 90},
	}
	for _, tt := range tests {
		if got := HueDistance(tt.h1, tt.h2); got != tt.want {
			t.Errorf("HueDistance(%v, %v) = %v, want %v", tt.h1, tt.h2, got, tt.want)
		}
	}
}

func TestPairHarmony_Zones(t *testing.T) {
	base := HSL{H: 0, S: 0.8, L: 0.5}

	tests := []struct {
		hue  float64
		want float64
	}{
		{10, 0.9},
		{25, 0.85},
		{45, 0.5},
		{75, 0.3},
		{120, 0.75},
		{132, 0.5},
		{140, 0.8},
		{170, 0.9},
	}
	for _, tt := range tests {
		got := PairHarmony(base, HSL{H: tt.hue, S: 0.8, L: 0.5})
		if got != tt.want {
			t.Errorf("PairHarmony(0, %v) = %v, want %v", tt.hue, got, tt.want)
		}
	}

	if got := PairHarmony(base, HSL{H: 75, S: 0.1, L: 0.5}); got != 0.8 {
		t.Errorf("neutral PairHarmony() = %v, want 0.8", got)
	}
}
