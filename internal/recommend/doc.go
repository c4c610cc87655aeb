// Thread - Wardrobe Outfit Recommendation Engine
// Copyright 2026 The Thread Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mdcscry/thread

// Package recommend implements the outfit recommendation engine.
//
// # Architecture
//
// A request flows through four stages:
//
//   - Filter: eligible items are narrowed by temperature and a formality
//     window around the context target
//   - Generate: the generator subpackage builds (top, bottom) and dress
//     candidates, completed with shoes, outerwear, bags and accessories
//   - Score: each candidate gets a blended score (item EMA mean mixed with a
//     per-user network when one is confident enough) plus a rule score used
//     as the first tie-break
//   - Diversify: an optional MMR pass, then a hard cap of four appearances per
//     item across the returned set
//
// Feedback updates item EMA scores immediately and accumulates as training
// data; TrainModel and RetrainPending fit the per-user network that later
// feeds the blend. PlanTrip runs the packing optimizer over the same
// generator and rule scorer.
//
// # Subpackages
//
//   - features: the 57-dimension item encoder
//   - preference: EMA updates, signal weights, color profile
//   - algorithms: rule scorer, network, trained and blended scorers
//   - generator: candidate construction
//   - reranking: diversity cap and MMR
//   - storage: versioned badger-backed model store
//   - packing: trip packing optimizer
//
// # Determinism
//
// Every random draw derives from Config.Seed. With a fixed seed and the same
// repository state, GenerateOutfits and PlanTrip return the same candidates
// in the same order.
//
// # Usage
//
//	store, err := storage.Open(storage.Config{Dir: "/data/models"})
//	engine, err := recommend.NewEngine(recommend.DefaultConfig(), repo, store, logger)
//
//	res, err := engine.GenerateOutfits(ctx, userID, models.Context{Occasion: "work"})
//	_, err = engine.RecordFeedback(ctx, userID, res.Outfits[0].ID, models.SignalThumbsUp)
//
// # Thread Safety
//
// The engine is safe for concurrent use. Training is serialized per user and
// swaps the cached model atomically, so a concurrent request scores with
// either the old or the new model.
package recommend
