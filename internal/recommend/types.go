// Thread - Wardrobe Outfit Recommendation Engine
// Copyright 2026 The Thread Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mdcscry/thread

package recommend

import (
	"context"
	"errors"
	"time"

	"github.com/mdcscry/thread/internal/models"
	"github.com/mdcscry/thread/internal/recommend/algorithms"
)

// Sentinel errors returned by the engine and its repository.
var (
	// ErrItemNotFound is returned when an item id does not belong to the user.
	ErrItemNotFound = errors.New("item not found")

	// ErrOutfitNotFound is returned when an outfit id does not belong to the user.
	ErrOutfitNotFound = errors.New("outfit not found")

	// ErrInvalidSignal is returned for signals outside the weight table.
	ErrInvalidSignal = errors.New("invalid feedback signal")

	// ErrInvalidRequest wraps request validation failures.
	ErrInvalidRequest = errors.New("invalid request")
)

// Repository is the item, outfit and feedback store the engine runs on.
// Implementations serialize writes per user; a multi-item update is not
// required to be atomic as a group.
type Repository interface {
	algorithms.TrainingRepository

	// ListEligibleItems returns the user's items that pass the filter.
	ListEligibleItems(ctx context.Context, userID string, f models.ItemFilter) ([]models.Item, error)

	// GetItem returns ErrItemNotFound when the item is missing.
	GetItem(ctx context.Context, userID, itemID string) (models.Item, error)

	// SaveOutfits persists generated outfits as item references.
	SaveOutfits(ctx context.Context, outfits []models.OutfitRecord) error

	// GetOutfit returns ErrOutfitNotFound when the outfit is missing.
	GetOutfit(ctx context.Context, userID, outfitID string) (models.OutfitRecord, error)

	// ApplyFeedback writes one feedback action atomically: either every
	// part of w is stored or none is.
	ApplyFeedback(ctx context.Context, w *FeedbackWrite) error

	// ListUsersWithUntrainedFeedback returns users holding at least minEvents
	// feedback events not yet consumed by training.
	ListUsersWithUntrainedFeedback(ctx context.Context, minEvents int) ([]string, error)
}

// FeedbackWrite is the persisted effect of one feedback action.
type FeedbackWrite struct {
	UserID string

	// Patches are item updates keyed by item id. A missing item fails the write.
	Patches map[string]models.ItemPatch

	// Events are appended to the feedback log.
	Events []models.FeedbackEvent

	// WornOutfitID, when set, flags that outfit as worn at WornAt.
	WornOutfitID string
	WornAt       time.Time
}

// WeatherProvider resolves the current temperature for a location.
type WeatherProvider interface {
	CurrentTemperatureF(ctx context.Context, location string) (float64, error)
}

// GenerateResult is the outcome of an outfit request. An empty wardrobe is
// reported through Error with an empty Outfits slice, not a Go error.
type GenerateResult struct {
	Outfits        []models.Outfit `json:"outfits"`
	Context        models.Context  `json:"context"`
	TotalGenerated int             `json:"total_generated"`
	ModelVersion   int             `json:"model_version,omitempty"`
	Error          string          `json:"error,omitempty"`
}

// FeedbackResult reports the effect of a feedback or wear action.
type FeedbackResult struct {
	UserID   string            `json:"user_id"`
	OutfitID string            `json:"outfit_id,omitempty"`
	ItemID   string            `json:"item_id,omitempty"`
	Signal   models.SignalType `json:"signal"`
	Weight   float64           `json:"weight"`

	// ItemsUpdated counts items whose EMA changed.
	ItemsUpdated int `json:"items_updated"`

	// Missing lists outfit items that no longer exist.
	Missing []string `json:"missing,omitempty"`

	// EventIDs are the stored feedback event ids.
	EventIDs []string `json:"event_ids"`

	// AlreadyWorn is set when a wear confirmation repeats.
	AlreadyWorn bool `json:"already_worn,omitempty"`
}

// RetrainSummary reports one pass of the retrain loop.
type RetrainSummary struct {
	Users    int           `json:"users"`
	Trained  int           `json:"trained"`
	Skipped  int           `json:"skipped"`
	Failed   int           `json:"failed"`
	Duration time.Duration `json:"duration"`
}
