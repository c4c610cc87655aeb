// Thread - Wardrobe Outfit Recommendation Engine
// Copyright 2026 The Thread Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mdcscry/thread

package reranking

import (
	"context"

	"github.com/mdcscry/thread/internal/models"
)

// MaxItemAppearances is the most outfits any one item may appear in.
const MaxItemAppearances = 4

// Diversity caps how often a single item recurs across returned outfits.
type Diversity struct{}

// NewDiversity creates the item-cap diversity filter.
func NewDiversity() *Diversity {
	return &Diversity{}
}

// Name returns the reranker identifier.
func (d *Diversity) Name() string {
	return "diversity"
}

// Rerank accepts outfits in ranked order, skipping any outfit that would
// push one of its items past MaxItemAppearances. It stops after k accepted
// outfits or when candidates run out.
func (d *Diversity) Rerank(ctx context.Context, outfits []models.Outfit, k int) []models.Outfit {
	if k <= 0 || len(outfits) == 0 {
		return nil
	}

	usage := make(map[string]int)
	accepted := make([]models.Outfit, 0, min(k, len(outfits)))

	for i := range outfits {
		if len(accepted) >= k {
			break
		}
		if ctx.Err() != nil {
			break
		}

		ids := uniqueIDs(outfits[i].ItemIDs())
		ok := true
		for _, id := range ids {
			if usage[id] >= MaxItemAppearances {
				ok = false
				break
			}
		}
		if !ok {
			continue
		}

		for _, id := range ids {
			usage[id]++
		}
		accepted = append(accepted, outfits[i])
	}

	return accepted
}

func uniqueIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := ids[:0:0]
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

var _ Reranker = (*Diversity)(nil)
