// Thread - Wardrobe Outfit Recommendation Engine
// Copyright 2026 The Thread Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mdcscry/thread

// Package validation provides struct validation using go-playground/validator v10.
//
// It wraps a thread-safe singleton validator with a few domain validators and
// human-readable error messages. Request contexts, trip constraints and
// feedback messages carry `validate` struct tags and are checked here before
// they reach the engine.
//
// # Quick Start
//
//	c := models.Context{Occasion: "work", Season: "winter"}
//	if verr := validation.ValidateStruct(&c); verr != nil {
//	    return fmt.Errorf("invalid context: %w", verr)
//	}
//
// # Custom Tags
//
//   - signal: a feedback signal with an entry in the preference weight table
//   - category: one of the outfit slot categories
//   - hexcolor_or_empty: empty, or a "#rrggbb" color
//
// # Error Types
//
// FieldError describes one failing field. RequestValidationError collects
// them; Fields returns a field to message map for structured logging.
//
// # Thread Safety
//
// GetValidator initializes the validator once; the instance caches struct
// metadata and is safe for concurrent use.
package validation
