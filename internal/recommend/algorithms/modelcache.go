// Thread - Wardrobe Outfit Recommendation Engine
// Copyright 2026 The Thread Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mdcscry/thread

package algorithms

import (
	"sync"
	"time"

	"github.com/mdcscry/thread/internal/cache"
	"github.com/mdcscry/thread/internal/metrics"
)

// Model is a trained per-user preference network plus the training facts
// that decide its blend weight.
type Model struct {
	UserID         string
	Version        int
	Network        *Network
	SampleCount    int
	ValidationLoss float64
	ValidationMAE  float64
	Epochs         int
	TrainedAt      time.Time
}

// Weight is the confidence blend weight for this model.
func (m *Model) Weight() float64 {
	return ConfidenceWeight(m.SampleCount, m.ValidationLoss)
}

// ModelCache holds loaded models keyed by user id.
//
// Entries are replaced wholesale: readers get either the old or the new
// *Model, never a partially written one. Models are never mutated after
// they are stored.
type ModelCache struct {
	lru *cache.LRU[*Model]
}

// NewModelCache creates a cache bounded to capacity models.
// A zero ttl keeps models until evicted or invalidated.
func NewModelCache(capacity int, ttl time.Duration) *ModelCache {
	return &ModelCache{lru: cache.New[*Model](capacity, ttl)}
}

// Get returns the cached model for a user.
func (c *ModelCache) Get(userID string) (*Model, bool) {
	m, ok := c.lru.Get(userID)
	if ok {
		metrics.ModelCacheLookups.WithLabelValues("hit").Inc()
	} else {
		metrics.ModelCacheLookups.WithLabelValues("miss").Inc()
	}
	return m, ok
}

// Put stores a model unless a newer version is already cached. It reports
// whether m was stored.
func (c *ModelCache) Put(m *Model) bool {
	if cur, ok := c.lru.Get(m.UserID); ok && cur.Version > m.Version {
		return false
	}
	c.lru.Add(m.UserID, m)
	return true
}

// peek returns the cached model without counting a lookup.
func (c *ModelCache) peek(userID string) (*Model, bool) {
	return c.lru.Get(userID)
}

// Swap stores a model and returns the one it replaced.
func (c *ModelCache) Swap(m *Model) (*Model, bool) {
	return c.lru.Swap(m.UserID, m)
}

// Invalidate drops a user's cached model.
func (c *ModelCache) Invalidate(userID string) bool {
	return c.lru.Remove(userID)
}

// Len is the number of cached models.
func (c *ModelCache) Len() int {
	return c.lru.Len()
}

// keyedMutex serializes work per key.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*refMutex
}

type refMutex struct {
	sync.Mutex
	refs int
}

// Lock acquires the lock for key and returns its release function.
func (k *keyedMutex) Lock(key string) func() {
	k.mu.Lock()
	if k.locks == nil {
		k.locks = make(map[string]*refMutex)
	}
	m, ok := k.locks[key]
	if !ok {
		m = &refMutex{}
		k.locks[key] = m
	}
	m.refs++
	k.mu.Unlock()

	m.Lock()
	return func() {
		m.Unlock()
		k.mu.Lock()
		m.refs--
		if m.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}
