// Thread - Wardrobe Outfit Recommendation Engine
// Copyright 2026 The Thread Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mdcscry/thread

// Package reranking post-processes score-ranked outfit candidates.
//
// Rerankers run after scoring and before outfits are returned:
//
//	Generator -> Blended scores -> Rank -> Rerankers -> Response
//
// # Available Rerankers
//
// Diversity:
//   - Greedy walk over the ranked list
//   - Any single item may appear in at most MaxItemAppearances accepted outfits
//   - The cap is fixed at 4
//
// Maximal Marginal Relevance (MMR):
//   - Optional, trades score against item overlap with already selected outfits
//   - Similarity is the Jaccard index of item id sets
//   - Lambda 1.0 disables it
//
// # Interface
//
//	type Reranker interface {
//	    Name() string
//	    Rerank(ctx context.Context, outfits []models.Outfit, k int) []models.Outfit
//	}
//
// Rerankers never modify their input slice.
package reranking

import (
	"context"

	"github.com/mdcscry/thread/internal/models"
)

// Reranker reorders or filters a ranked outfit list down to k entries.
type Reranker interface {
	Name() string
	Rerank(ctx context.Context, outfits []models.Outfit, k int) []models.Outfit
}
