// Thread - Wardrobe Outfit Recommendation Engine
// Copyright 2026 The Thread Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mdcscry/thread

package features

import (
	"math"

	"github.com/mdcscry/thread/internal/models"
)

// Dim is the width of every feature vector.
const Dim = 57

// DefaultEMA is assumed for items without a preference score.
const DefaultEMA = 0.5

// noPeers is the value of every outfit-level scalar for a lone item.
const noPeers = 0.5

// Block offsets into the feature vector.
const (
	offSubcategory = 0
	offRGB         = offSubcategory + 16
	offHSL         = offRGB + 3
	offPattern     = offHSL + 3
	offMaterial    = offPattern + 8
	offEMA         = offMaterial + 10
	offOccasion    = offEMA + 1
	offSeason      = offOccasion + 5
	offTime        = offSeason + 4
	offHarmony     = offTime + 3
	offFormality   = offHarmony + 1
	offDiversity   = offFormality + 1
	offPeerEMA     = offDiversity + 1
)

// Encode computes the feature vector for item inside an outfit with the
// given peers (the other items, excluding item itself).
//
//nolint:gocritic // hugeParam: context passed by value, it is small and immutable here
func Encode(item *models.Item, c models.Context, peers []models.Item) []float64 {
	v := make([]float64, Dim)

	sub := CanonicalSubcategory(item)
	for i, label := range Subcategories {
		if label == sub {
			v[offSubcategory+i] = 1
			break
		}
	}

	rgb := ParseHexOrGray(item.PrimaryColor)
	v[offRGB], v[offRGB+1], v[offRGB+2] = rgb.Normalized()
	hsl := rgb.HSL()
	v[offHSL], v[offHSL+1], v[offHSL+2] = hsl.H/360, hsl.S, hsl.L

	oneHot(v[offPattern:offMaterial], Patterns, item.Pattern)
	oneHot(v[offMaterial:offEMA], Materials, item.Material)

	v[offEMA] = clamp01(item.Score(DefaultEMA))

	oneHot(v[offOccasion:offSeason], Occasions, c.Occasion)
	oneHot(v[offSeason:offTime], Seasons, c.Season)
	oneHot(v[offTime:offHarmony], TimesOfDay, c.TimeOfDay)

	v[offHarmony] = ColorHarmony(item, peers)
	v[offFormality] = FormalityMatch(item, &c)
	v[offDiversity] = CategoryDiversity(peers)
	v[offPeerEMA] = MeanPeerEMA(peers)

	for i := range v {
		if math.IsNaN(v[i]) || math.IsInf(v[i], 0) {
			v[i] = 0
		}
	}
	return v
}

// ColorHarmony averages PairHarmony between the item and every peer.
func ColorHarmony(item *models.Item, peers []models.Item) float64 {
	if len(peers) == 0 {
		return noPeers
	}
	self := HexToHSL(item.PrimaryColor)
	var sum float64
	for i := range peers {
		sum += PairHarmony(self, HexToHSL(peers[i].PrimaryColor))
	}
	return sum / float64(len(peers))
}

// FormalityMatch is max(0, 1 - |item - context| / 10).
func FormalityMatch(item *models.Item, c *models.Context) float64 {
	diff := math.Abs(float64(ItemFormality(item) - c.Formality()))
	return math.Max(0, 1-diff/10)
}

// CategoryDiversity is the share of distinct categories among peers.
func CategoryDiversity(peers []models.Item) float64 {
	if len(peers) == 0 {
		return noPeers
	}
	seen := make(map[models.Category]struct{}, len(peers))
	for i := range peers {
		seen[peers[i].Category] = struct{}{}
	}
	return float64(len(seen)) / float64(len(peers))
}

// MeanPeerEMA averages peer EMA scores, counting unset scores as 0.5.
func MeanPeerEMA(peers []models.Item) float64 {
	if len(peers) == 0 {
		return noPeers
	}
	var sum float64
	for i := range peers {
		sum += clamp01(peers[i].Score(DefaultEMA))
	}
	return sum / float64(len(peers))
}

// Peers returns every item except the one at index skip.
func Peers(items []models.Item, skip int) []models.Item {
	peers := make([]models.Item, 0, len(items))
	for i := range items {
		if i != skip {
			peers = append(peers, items[i])
		}
	}
	return peers
}

func clamp01(x float64) float64 {
	if math.IsNaN(x) || x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
