// Thread - Wardrobe Outfit Recommendation Engine
// Copyright 2026 The Thread Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mdcscry/thread

// Package algorithms implements the outfit scoring signals.
//
// # Scorers
//
// Rule scorer (RuleScore):
//   - Deterministic heuristic starting at 0.5
//   - Color harmony on a 12-step wheel, loved-item bonus, formality penalty
//   - Used for tie-breaking and by the packing optimizer
//
// Trained scorer (TrainedScorer):
//   - Per-user feed-forward network over the 57-wide feature vector
//   - Dense(32, relu, l2) -> Dropout(0.3) -> Dense(16, relu, l2) -> Dense(1)
//   - Huber loss, Adam(0.01), early stopping on validation loss
//   - Models are persisted through a ModelStore and cached in a ModelCache
//
// Blended scorer (BlendedScorer):
//   - Mean item EMA score, mixed with the network score by a confidence
//     weight derived from sample count and validation loss
//   - Falls back to EMA only on any model failure
//
// # Thread Safety
//
// RuleScore and the blend math are pure. TrainedScorer serializes training
// per user and swaps cache entries atomically, so a concurrent scorer sees
// either the previous model or the new one.
package algorithms
