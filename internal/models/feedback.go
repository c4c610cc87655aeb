// Thread - Wardrobe Outfit Recommendation Engine
// Copyright 2026 The Thread Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mdcscry/thread

package models

import "time"

// SignalType is a feedback signal drawn from a fixed vocabulary.
type SignalType string

const (
	SignalWornConfirmed       SignalType = "worn_confirmed"
	SignalVoicePositiveStrong SignalType = "voice_positive_strong"
	SignalVoicePositiveMild   SignalType = "voice_positive_mild"
	SignalThumbsUp            SignalType = "thumbs_up"
	SignalLovedItem           SignalType = "loved_item"
	SignalWornUnconfirmed     SignalType = "worn_unconfirmed"
	SignalSkippedRepeatedly   SignalType = "skipped_repeatedly"
	SignalVoiceNegativeMild   SignalType = "voice_negative_mild"
	SignalThumbsDown          SignalType = "thumbs_down"
	SignalVoiceNegativeStrong SignalType = "voice_negative_strong"

	// Signals that carry no EMA weight.
	SignalNeutral   SignalType = "neutral"
	SignalDismissed SignalType = "dismissed"
	SignalExclude   SignalType = "exclude"

	// Legacy signals that only appear in stored training data.
	SignalVoicePositive   SignalType = "voice_positive"
	SignalVoiceNegative   SignalType = "voice_negative"
	SignalSavedOutfit     SignalType = "saved_outfit"
	SignalViewedLong      SignalType = "viewed_long"
	SignalSkippedRepeated SignalType = "skipped_repeated"
)

// FeedbackEvent is one labeled feedback signal against one item.
//
// Events are append-only; the only mutation is flipping Trained after a
// model training pass consumed them.
type FeedbackEvent struct {
	ID       string     `json:"id"`
	UserID   string     `json:"user_id"`
	ItemID   string     `json:"item_id"`
	OutfitID string     `json:"outfit_id,omitempty"`
	Signal   SignalType `json:"signal"`

	// Value is the stored label, when the channel supplied one.
	Value *float64 `json:"value,omitempty"`

	// Context is the request context the feedback was given in.
	Context *Context `json:"context,omitempty"`

	Trained   bool      `json:"trained"`
	CreatedAt time.Time `json:"created_at"`
}

// TrainingSession is one row of the append-only training audit log.
type TrainingSession struct {
	ID             string    `json:"id"`
	UserID         string    `json:"user_id"`
	SampleCount    int       `json:"sample_count"`
	ValidationLoss float64   `json:"validation_loss"`
	ValidationMAE  float64   `json:"validation_mae"`
	ParamCount     int       `json:"param_count"`
	Epochs         int       `json:"epochs"`
	ModelPath      string    `json:"model_path"`
	CreatedAt      time.Time `json:"created_at"`
}
