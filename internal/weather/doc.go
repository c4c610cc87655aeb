// Thread - Wardrobe Outfit Recommendation Engine
// Copyright 2026 The Thread Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mdcscry/thread

// Package weather resolves the current temperature for a location.
//
// Client implements recommend.WeatherProvider against a small HTTP API:
//
//	GET {base}/current?location=Portland
//	{"location": "Portland", "temperature_f": 58.5}
//
// A temperature_c field is accepted when temperature_f is absent. A 404
// means the location is unknown.
//
// Lookups are cached per normalized location, limited by a token bucket
// (golang.org/x/time/rate), and guarded by a circuit breaker
// (sony/gobreaker). The engine treats every error as "no weather" and
// generates outfits without a temperature filter.
package weather
