// Thread - Wardrobe Outfit Recommendation Engine
// Copyright 2026 The Thread Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mdcscry/thread

package preference

import (
	"math"
	"sort"
	"strings"

	"github.com/mdcscry/thread/internal/models"
)

// DominantColorCount is how many colors the profile reports as dominant.
const DominantColorCount = 8

// ForeignColorPenalty is subtracted from palette consistency per foreign color.
const ForeignColorPenalty = 0.15

// Color family membership lists.
var (
	earthTones = setOf("brown", "tan", "beige", "khaki", "olive", "rust", "camel",
		"terracotta", "mustard", "chocolate", "taupe", "burgundy", "sage")
	neutralColors = setOf("black", "white", "gray", "grey", "navy", "cream", "ivory",
		"charcoal", "beige", "taupe", "silver")
	brightColors = setOf("red", "orange", "yellow", "green", "blue", "purple", "pink",
		"magenta", "cyan", "turquoise", "fuchsia", "coral", "lime", "teal", "gold")
	pastelColors = setOf("lavender", "mint", "blush", "baby blue", "peach", "lilac",
		"powder blue", "pale pink", "light pink", "sky blue", "pale yellow", "seafoam")

	// paletteNeutrals never count as foreign in palette consistency.
	paletteNeutrals = setOf("black", "white", "gray", "grey", "navy", "beige", "cream",
		"ivory", "charcoal", "tan", "khaki", "denim")
)

// ColorCount is one entry of a color histogram.
type ColorCount struct {
	Color string `json:"color"`
	Count int    `json:"count"`
}

// ColorProfile summarizes the colors a user owns.
type ColorProfile struct {
	// Frequencies is the full histogram, most frequent first.
	Frequencies []ColorCount `json:"frequencies"`

	EarthTone float64 `json:"earth_tone"`
	Neutral   float64 `json:"neutral"`
	Bright    float64 `json:"bright"`
	Pastel    float64 `json:"pastel"`

	// Dominant holds the top DominantColorCount colors.
	Dominant []string `json:"dominant"`
	Total    int      `json:"total"`
}

// BuildColorProfile histograms color names across reviewed, non-archived items.
func BuildColorProfile(items []models.Item) ColorProfile {
	freq := make(map[string]int)
	total := 0
	for i := range items {
		if !items[i].Reviewed || items[i].Archived {
			continue
		}
		for _, c := range items[i].Colors {
			c = normalizeColor(c)
			if c == "" {
				continue
			}
			freq[c]++
			total++
		}
	}

	p := ColorProfile{Total: total}
	if total == 0 {
		return p
	}

	p.Frequencies = make([]ColorCount, 0, len(freq))
	var earth, neutral, bright, pastel int
	for c, n := range freq {
		p.Frequencies = append(p.Frequencies, ColorCount{Color: c, Count: n})
		if _, ok := earthTones[c]; ok {
			earth += n
		}
		if _, ok := neutralColors[c]; ok {
			neutral += n
		}
		if _, ok := brightColors[c]; ok {
			bright += n
		}
		if _, ok := pastelColors[c]; ok {
			pastel += n
		}
	}

	sort.Slice(p.Frequencies, func(i, j int) bool {
		if p.Frequencies[i].Count != p.Frequencies[j].Count {
			return p.Frequencies[i].Count > p.Frequencies[j].Count
		}
		return p.Frequencies[i].Color < p.Frequencies[j].Color
	})

	t := float64(total)
	p.EarthTone = float64(earth) / t
	p.Neutral = float64(neutral) / t
	p.Bright = float64(bright) / t
	p.Pastel = float64(pastel) / t

	n := min(DominantColorCount, len(p.Frequencies))
	p.Dominant = make([]string, n)
	for i := 0; i < n; i++ {
		p.Dominant[i] = p.Frequencies[i].Color
	}
	return p
}

// PaletteConsistency scores how well items stay inside the profile's
// dominant colors: max(0, 1 - 0.15 * foreign).
func PaletteConsistency(items []models.Item, profile *ColorProfile) float64 {
	dominant := setOf(profile.Dominant...)
	foreign := 0
	for i := range items {
		for _, c := range items[i].Colors {
			c = normalizeColor(c)
			if c == "" {
				continue
			}
			if _, ok := dominant[c]; ok {
				continue
			}
			if _, ok := paletteNeutrals[c]; ok {
				continue
			}
			foreign++
		}
	}
	return math.Max(0, 1-ForeignColorPenalty*float64(foreign))
}

func normalizeColor(c string) string {
	return strings.ToLower(strings.TrimSpace(c))
}

func setOf(values ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(values))
	for _, v := range values {
		m[normalizeColor(v)] = struct{}{}
	}
	return m
}
