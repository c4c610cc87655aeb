// Thread - Wardrobe Outfit Recommendation Engine
// Copyright 2026 The Thread Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mdcscry/thread

package algorithms

import (
	"math"

	"github.com/mdcscry/thread/internal/models"
	"github.com/mdcscry/thread/internal/recommend/features"
)

// Rule scorer constants.
const (
	ruleBase            = 0.5
	ruleHarmonyWeight   = 0.3
	ruleLovedBonus      = 0.05
	ruleFormalityWeight = 0.05

	// wheelStep quantizes hues onto a 12-step color wheel.
	wheelStep = 30.0

	// Lightness outside [wheelDark, wheelLight] reads as black or white.
	wheelDark  = 0.1
	wheelLight = 0.92
)

// RuleResult is the rule score and the terms that produced it.
type RuleResult struct {
	Score        float64 `json:"score"`
	Harmony      float64 `json:"harmony"`
	LovedCount   int     `json:"loved_count"`
	FormalityGap float64 `json:"formality_gap"`
}

// RuleScore computes the deterministic heuristic score of an outfit:
//
//	0.5 + (harmony - 0.5) * 0.3 + 0.05 * loved - 0.05 * |avgFormality - target|
//
// clamped to [0, 1].
func RuleScore(items []models.Item, c *models.Context) RuleResult {
	if len(items) == 0 {
		return RuleResult{Score: ruleBase, Harmony: ruleBase}
	}

	harmony := WheelHarmony(items)

	loved := 0
	var formality float64
	for i := range items {
		if items[i].Loved {
			loved++
		}
		formality += float64(features.ItemFormality(&items[i]))
	}
	gap := math.Abs(formality/float64(len(items)) - float64(c.Formality()))

	score := ruleBase +
		(harmony-0.5)*ruleHarmonyWeight +
		ruleLovedBonus*float64(loved) -
		ruleFormalityWeight*gap

	return RuleResult{
		Score:        math.Max(0, math.Min(1, score)),
		Harmony:      harmony,
		LovedCount:   loved,
		FormalityGap: gap,
	}
}

// WheelHarmony scores an outfit's colors on a simplified 12-step wheel.
// Neutral-dominated outfits (at most one chromatic item) score 1.0; otherwise
// the widest hue spread decides: under 30° 0.9, 165-195° 0.85, 90-150° 0.75,
// anything else 0.4.
func WheelHarmony(items []models.Item) float64 {
	hues := make([]float64, 0, len(items))
	for i := range items {
		c := features.HexToHSL(items[i].PrimaryColor)
		if wheelNeutral(c) {
			continue
		}
		hues = append(hues, math.Mod(math.Round(c.H/wheelStep), 12)*wheelStep)
	}
	if len(hues) <= 1 {
		return 1.0
	}

	var spread float64
	for i := 0; i < len(hues); i++ {
		for j := i + 1; j < len(hues); j++ {
			spread = math.Max(spread, features.HueDistance(hues[i], hues[j]))
		}
	}

	switch {
	case spread < 30:
		return 0.9
	case spread >= 165 && spread <= 195:
		return 0.85
	case spread >= 90 && spread <= 150:
		return 0.75
	default:
		return 0.4
	}
}

func wheelNeutral(c features.HSL) bool {
	return features.IsNeutral(c) || c.L < wheelDark || c.L > wheelLight
}
