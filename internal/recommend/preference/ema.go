// Thread - Wardrobe Outfit Recommendation Engine
// Copyright 2026 The Thread Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mdcscry/thread

// Package preference maintains the online per-item preference score.
//
// Every feedback signal maps to a fixed weight in [-1, 1]. The weight is
// normalized to [0, 1] and folded into the item's exponential moving average:
//
//	normalized = clamp((w + 1) / 2, 0, 1)
//	first update:  score = normalized
//	later updates: score = clamp(0.3*normalized + 0.7*score, 0, 1)
//
// A weight of exactly zero leaves the item untouched. Outfit feedback applies
// the same value to every item in the outfit.
//
// The package also builds a user's color profile and scores how consistent a
// set of items is with it.
package preference

import (
	"time"

	"github.com/mdcscry/thread/internal/models"
)

// Alpha is the EMA smoothing factor applied to the newest observation.
const Alpha = 0.3

// signalWeights is the fixed signal weight table.
var signalWeights = map[models.SignalType]float64{
	models.SignalWornConfirmed:       1.0,
	models.SignalVoicePositiveStrong: 0.9,
	models.SignalVoicePositiveMild:   0.65,
	models.SignalThumbsUp:            0.6,
	models.SignalLovedItem:           0.55,
	models.SignalWornUnconfirmed:     0.4,
	models.SignalSkippedRepeatedly:   -0.2,
	models.SignalVoiceNegativeMild:   -0.5,
	models.SignalThumbsDown:          -0.8,
	models.SignalVoiceNegativeStrong: -0.9,
	models.SignalNeutral:             0,
	models.SignalDismissed:           0,
}

// Weight returns the signal weight and whether the signal is known.
func Weight(signal models.SignalType) (float64, bool) {
	w, ok := signalWeights[signal]
	return w, ok
}

// Signals lists every signal with a weight entry.
func Signals() []models.SignalType {
	out := make([]models.SignalType, 0, len(signalWeights))
	for s := range signalWeights {
		out = append(out, s)
	}
	return out
}

// Normalize maps a weight in [-1, 1] to [0, 1].
func Normalize(weight float64) float64 {
	return clamp01((weight + 1) / 2)
}

// Apply folds one weighted observation into an EMA score.
// It returns the new score and count; a zero weight returns the inputs.
func Apply(score *float64, count int, weight float64) (*float64, int) {
	if weight == 0 {
		return score, count
	}
	n := Normalize(weight)
	if count <= 0 || score == nil {
		return &n, 1
	}
	next := clamp01(Alpha*n + (1-Alpha)*(*score))
	return &next, count + 1
}

// Update returns the patch that applies weight to item, and false when the
// weight causes no change.
func Update(item *models.Item, weight float64) (models.ItemPatch, bool) {
	if weight == 0 {
		return models.ItemPatch{}, false
	}
	score, count := Apply(item.EMAScore, item.EMACount, weight)
	return models.ItemPatch{EMAScore: score, EMACount: &count}, true
}

// UpdateOutfit returns per-item patches applying the same weight to every
// item. Items are keyed by id.
func UpdateOutfit(items []models.Item, weight float64) map[string]models.ItemPatch {
	patches := make(map[string]models.ItemPatch, len(items))
	if weight == 0 {
		return patches
	}
	for i := range items {
		if p, ok := Update(&items[i], weight); ok {
			patches[items[i].ID] = p
		}
	}
	return patches
}

// WornWeight is applied to every item of an outfit confirmed as worn.
const WornWeight = 1.0

// MarkWorn returns per-item patches for a confirmed wear: full positive
// weight, wear counter incremented, and last-worn set to now.
func MarkWorn(items []models.Item, now time.Time) map[string]models.ItemPatch {
	patches := make(map[string]models.ItemPatch, len(items))
	for i := range items {
		p, _ := Update(&items[i], WornWeight)
		wear := items[i].WearCount + 1
		worn := now
		p.WearCount = &wear
		p.LastWornAt = &worn
		patches[items[i].ID] = p
	}
	return patches
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
