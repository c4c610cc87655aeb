// Thread - Wardrobe Outfit Recommendation Engine
// Copyright 2026 The Thread Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mdcscry/thread

package models

// Climate is the expected temperature band at the destination.
type Climate struct {
	MinTempF float64 `json:"min_temp_f"`
	MaxTempF float64 `json:"max_temp_f" validate:"gtefield=MinTempF"`
}

// TripConstraints describe a packing request.
type TripConstraints struct {
	Activities []string `json:"activities" validate:"dive,required,max=64"`
	MaxItems   int      `json:"max_items" validate:"min=0,max=200"`
	Climate    *Climate `json:"climate,omitempty"`
	Season     string   `json:"season,omitempty" validate:"omitempty,oneof=spring summer fall winter"`
	Seed       int64    `json:"seed,omitempty"`
}

// ActivityPlan is the per-activity part of a trip plan.
type ActivityPlan struct {
	Activity  string   `json:"activity"`
	Coverable bool     `json:"coverable"`
	Outfits   []Outfit `json:"outfits"`
}

// OutfitCount is the number of outfits assembled for the activity.
func (a *ActivityPlan) OutfitCount() int {
	return len(a.Outfits)
}

// TripPlan is the result of packing optimization.
type TripPlan struct {
	Items            []Item         `json:"items"`
	Outfits          []Outfit       `json:"outfits"`
	Activities       []ActivityPlan `json:"activities"`
	TotalOutfits     int            `json:"total_outfits"`
	CoveredCount     int            `json:"covered_count"`
	VersatilityScore float64        `json:"versatility_score"`

	// Error explains an input deficiency; the plan is empty but valid.
	Error string `json:"error,omitempty"`
}
