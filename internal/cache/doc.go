// Thread - Wardrobe Outfit Recommendation Engine
// Copyright 2026 The Thread Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mdcscry/thread

/*
Package cache provides a generic, bounded, thread-safe LRU with optional TTL.

Three components share it:

  - recommend/algorithms.ModelCache keeps decoded preference networks per user
    so scoring does not hit Badger on every request. Training a new model
    swaps the entry; a failed training run leaves it alone.
  - weather.Client caches temperatures per location for the configured TTL.
  - eventprocessor.FeedbackHandler remembers processed event ids so JetStream
    redeliveries are acknowledged without being applied twice.

Usage:

	models := cache.New[*Model](256, 0)
	models.Add(userID, m)
	if m, ok := models.Get(userID); ok {
		// use m
	}

	seen := cache.New[struct{}](10000, time.Hour)
	if seen.IsDuplicate(eventID) {
		return nil
	}

Expiration is lazy. Expired entries are dropped when accessed or when
CleanupExpired runs. Capacity evictions can be observed with WithOnEvict.
*/
package cache
