// Thread - Wardrobe Outfit Recommendation Engine
// Copyright 2026 The Thread Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mdcscry/thread

package models

import "strings"

// Occasion vocabulary. Occasions outside this list are accepted but encode
// to an all-zero one-hot vector.
const (
	OccasionCasual   = "casual"
	OccasionWork     = "work"
	OccasionDate     = "date"
	OccasionFormal   = "formal"
	OccasionAthletic = "athletic"
	OccasionDinner   = "dinner"
	OccasionParty    = "party"
	OccasionTravel   = "travel"
)

// Seasons and times of day.
const (
	SeasonSpring = "spring"
	SeasonSummer = "summer"
	SeasonFall   = "fall"
	SeasonWinter = "winter"

	TimeMorning   = "morning"
	TimeAfternoon = "afternoon"
	TimeEvening   = "evening"
)

// occasionFormality is the static occasion -> formality lookup used when a
// request does not carry an explicit formality target.
var occasionFormality = map[string]int{
	OccasionCasual:   3,
	OccasionWork:     6,
	OccasionDate:     6,
	OccasionFormal:   9,
	OccasionAthletic: 2,
	OccasionDinner:   6,
	OccasionParty:    5,
	OccasionTravel:   3,
}

// DefaultFormality is used when neither the occasion nor the request says
// anything about formality.
const DefaultFormality = 5

// OccasionFormality returns the lookup formality for an occasion, or
// DefaultFormality when the occasion is unknown.
func OccasionFormality(occasion string) int {
	if f, ok := occasionFormality[strings.ToLower(occasion)]; ok {
		return f
	}
	return DefaultFormality
}

// Context is the per-request situation an outfit is chosen for.
// It is ephemeral and never persisted except as a feedback snapshot.
type Context struct {
	Occasion  string `json:"occasion" validate:"omitempty,max=64"`
	Season    string `json:"season,omitempty" validate:"omitempty,oneof=spring summer fall winter"`
	TimeOfDay string `json:"time_of_day,omitempty" validate:"omitempty,oneof=morning afternoon evening"`

	// TemperatureF is the current weather temperature, when known.
	TemperatureF *float64 `json:"temperature_f,omitempty" validate:"omitempty"`

	// FormalityTarget overrides the occasion lookup when non-zero.
	FormalityTarget int `json:"formality_target,omitempty" validate:"omitempty,min=1,max=10"`

	// Location lets the engine resolve TemperatureF from the weather service.
	Location string `json:"location,omitempty" validate:"omitempty,max=128"`

	// NumCandidates is how many candidate outfits to generate before ranking.
	NumCandidates int `json:"num_candidates,omitempty" validate:"omitempty,min=1,max=1000"`

	// Limit is how many ranked outfits to return.
	Limit int `json:"limit,omitempty" validate:"omitempty,min=1,max=100"`
}

// Formality returns the explicit target or the occasion lookup.
func (c *Context) Formality() int {
	if c.FormalityTarget > 0 {
		return c.FormalityTarget
	}
	return OccasionFormality(c.Occasion)
}

// Normalized returns a copy with lower-cased vocabulary fields and the
// formality target resolved.
func (c Context) Normalized() Context {
	c.Occasion = strings.ToLower(strings.TrimSpace(c.Occasion))
	c.Season = strings.ToLower(strings.TrimSpace(c.Season))
	c.TimeOfDay = strings.ToLower(strings.TrimSpace(c.TimeOfDay))
	c.FormalityTarget = c.Formality()
	return c
}

// DefaultContext is the context assumed for stored feedback that carries no
// snapshot.
func DefaultContext() Context {
	return Context{
		Occasion:        OccasionCasual,
		Season:          SeasonSpring,
		TimeOfDay:       TimeAfternoon,
		FormalityTarget: OccasionFormality(OccasionCasual),
	}
}
