// Thread - Wardrobe Outfit Recommendation Engine
// Copyright 2026 The Thread Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mdcscry/thread

/*
Package models defines the data structures shared by the engine, the
repository and the feedback pipeline.

Wardrobe:

  - Item: one clothing piece with its tags, temperature range, lifecycle
    flags and EMA preference state
  - ItemPatch: partial item update written back by feedback
  - ItemFilter: eligibility rules for a request (temperature, formality
    window, categories, laundry/storage/archived)

Requests and outfits:

  - Context: occasion, season, time of day, temperature and formality target
  - Outfit: slot pieces plus ordered accessories, with score and method
  - OutfitRecord: the persisted form, item ids only

Feedback and training:

  - SignalType: the fixed feedback vocabulary
  - FeedbackEvent: one stored signal with its context snapshot
  - TrainingSession: metrics of one preference-network training run

Packing:

  - TripConstraints, TripPlan, ActivityPlan

Struct tags carry both the JSON shape and the go-playground/validator
rules enforced by internal/validation.
*/
package models
