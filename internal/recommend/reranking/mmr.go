// Thread - Wardrobe Outfit Recommendation Engine
// Copyright 2026 The Thread Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mdcscry/thread

package reranking

import (
	"context"

	"github.com/mdcscry/thread/internal/models"
)

// maxRerankSize limits slice allocations.
const maxRerankSize = 10000

// MMR implements Maximal Marginal Relevance reranking over outfits.
//
// The MMR formula is:
//
//	MMR = argmax[lambda * score(o) - (1-lambda) * max(sim(o, s)) for s in selected]
//
// Where:
//   - lambda: balance parameter (1.0 = pure score, 0.0 = pure diversity)
//   - score(o): blended outfit score
//   - sim(o, s): Jaccard similarity of the two outfits' item ids
//
// Reference:
// Carbonell, J., & Goldstein, J. (1998). "The Use of MMR, Diversity-Based
// Reranking for Reordering Documents and Producing Summaries." SIGIR 1998.
type MMR struct {
	lambda float64
}

// NewMMR creates a new MMR reranker. Lambda is clamped to [0, 1].
func NewMMR(lambda float64) *MMR {
	if lambda < 0 {
		lambda = 0
	}
	if lambda > 1 {
		lambda = 1
	}
	return &MMR{lambda: lambda}
}

// Name returns the reranker identifier.
func (m *MMR) Name() string {
	return "mmr"
}

// Rerank selects k outfits balancing score against overlap.
func (m *MMR) Rerank(ctx context.Context, outfits []models.Outfit, k int) []models.Outfit {
	if len(outfits) == 0 || k <= 0 {
		return nil
	}
	if k > maxRerankSize {
		k = maxRerankSize
	}
	if k > len(outfits) {
		k = len(outfits)
	}

	if m.lambda >= 1.0 {
		return append([]models.Outfit(nil), outfits[:k]...)
	}

	sets := make([]map[string]struct{}, len(outfits))
	for i := range outfits {
		sets[i] = idSet(outfits[i].ItemIDs())
	}

	selected := make([]models.Outfit, 0, k)
	selectedIdx := make([]int, 0, k)
	taken := make([]bool, len(outfits))

	for len(selected) < k {
		if ctx.Err() != nil {
			break
		}
		bestIdx := -1
		bestMMR := 0.0

		for i := range outfits {
			if taken[i] {
				continue
			}
			maxSim := 0.0
			for _, j := range selectedIdx {
				if sim := jaccard(sets[i], sets[j]); sim > maxSim {
					maxSim = sim
				}
			}
			score := m.lambda*outfits[i].Score - (1-m.lambda)*maxSim
			if bestIdx < 0 || score > bestMMR {
				bestMMR = score
				bestIdx = i
			}
		}

		if bestIdx < 0 {
			break
		}
		taken[bestIdx] = true
		selectedIdx = append(selectedIdx, bestIdx)
		selected = append(selected, outfits[bestIdx])
	}

	return selected
}

func idSet(ids []string) map[string]struct{} {
	s := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// jaccard computes |a ∩ b| / |a ∪ b|.
func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}
	intersection := 0
	for id := range a {
		if _, ok := b[id]; ok {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

var _ Reranker = (*MMR)(nil)
