// Thread - Wardrobe Outfit Recommendation Engine
// Copyright 2026 The Thread Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mdcscry/thread

package cache

import (
	"sync"
	"time"
)

// entry is a node in the LRU list.
type entry[V any] struct {
	key       string
	value     V
	prev      *entry[V]
	next      *entry[V]
	expiresAt time.Time
}

// LRU is a thread-safe least recently used cache with optional TTL.
//
// Get, Add and Remove are O(1). A doubly-linked list keeps recency order and
// a map indexes the nodes. Expiration is lazy: stale entries are dropped on
// access or by CleanupExpired.
type LRU[V any] struct {
	mu sync.Mutex

	capacity int

	// ttl of zero disables expiration.
	ttl time.Duration

	items map[string]*entry[V]

	// head.next is the most recently used, tail.prev the least.
	head *entry[V]
	tail *entry[V]

	hits      int64
	misses    int64
	evictions int64

	// onEvict is called with the lock held; it must not call back into the cache.
	onEvict func(key string, value V)

	now func() time.Time
}

// Option configures an LRU.
type Option[V any] func(*LRU[V])

// WithOnEvict registers a callback for capacity evictions.
func WithOnEvict[V any](fn func(key string, value V)) Option[V] {
	return func(c *LRU[V]) { c.onEvict = fn }
}

// WithClock overrides time.Now, for tests.
func WithClock[V any](now func() time.Time) Option[V] {
	return func(c *LRU[V]) { c.now = now }
}

// New creates an LRU with the given capacity and TTL.
func New[V any](capacity int, ttl time.Duration, opts ...Option[V]) *LRU[V] {
	if capacity <= 0 {
		capacity = 1000
	}
	if ttl < 0 {
		ttl = 0
	}

	c := &LRU[V]{
		capacity: capacity,
		ttl:      ttl,
		items:    make(map[string]*entry[V], capacity),
		head:     &entry[V]{},
		tail:     &entry[V]{},
		now:      time.Now,
	}
	c.head.next = c.tail
	c.tail.prev = c.head

	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the value for key and marks it most recently used.
func (c *LRU[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.items[key]; ok {
		if c.expired(e) {
			c.removeEntry(e)
			c.misses++
			var zero V
			return zero, false
		}
		c.moveToFront(e)
		c.hits++
		return e.value, true
	}

	c.misses++
	var zero V
	return zero, false
}

// Contains reports whether key is present without touching recency.
func (c *LRU[V]) Contains(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.items[key]
	return ok && !c.expired(e)
}

// Add inserts or replaces the value for key.
func (c *LRU[V]) Add(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.addLocked(key, value)
}

// Swap replaces the value for key and returns the previous one.
func (c *LRU[V]) Swap(key string, value V) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var prev V
	e, ok := c.items[key]
	if ok && !c.expired(e) {
		prev = e.value
	} else {
		ok = false
	}
	c.addLocked(key, value)
	return prev, ok
}

// Remove deletes key and reports whether it was present.
func (c *LRU[V]) Remove(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.items[key]; ok {
		c.removeEntry(e)
		return true
	}
	return false
}

// IsDuplicate reports whether key was seen within the TTL, recording it if not.
func (c *LRU[V]) IsDuplicate(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.items[key]; ok {
		if !c.expired(e) {
			c.moveToFront(e)
			c.hits++
			return true
		}
		c.removeEntry(e)
	}

	var zero V
	c.addLocked(key, zero)
	c.misses++
	return false
}

// Len returns the number of entries, including expired ones not yet swept.
func (c *LRU[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Keys returns keys from most to least recently used.
func (c *LRU[V]) Keys() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	keys := make([]string, 0, len(c.items))
	for e := c.head.next; e != c.tail; e = e.next {
		keys = append(keys, e.key)
	}
	return keys
}

// Clear removes every entry.
func (c *LRU[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[string]*entry[V], c.capacity)
	c.head.next = c.tail
	c.tail.prev = c.head
}

// CleanupExpired drops expired entries and returns how many were removed.
func (c *LRU[V]) CleanupExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.ttl == 0 {
		return 0
	}

	removed := 0
	for e := c.tail.prev; e != c.head; {
		prev := e.prev
		if c.expired(e) {
			c.removeEntry(e)
			removed++
		}
		e = prev
	}
	return removed
}

// Stats returns hit, miss and eviction counters and the current size.
func (c *LRU[V]) Stats() (hits, misses, evictions int64, size int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses, c.evictions, len(c.items)
}

// Internal methods, called with the lock held.

func (c *LRU[V]) addLocked(key string, value V) {
	var expiresAt time.Time
	if c.ttl > 0 {
		expiresAt = c.now().Add(c.ttl)
	}

	if e, ok := c.items[key]; ok {
		e.value = value
		e.expiresAt = expiresAt
		c.moveToFront(e)
		return
	}

	e := &entry[V]{key: key, value: value, expiresAt: expiresAt}
	c.addToFront(e)
	c.items[key] = e

	for len(c.items) > c.capacity {
		c.evictOldest()
	}
}

func (c *LRU[V]) expired(e *entry[V]) bool {
	return c.ttl > 0 && c.now().After(e.expiresAt)
}

func (c *LRU[V]) addToFront(e *entry[V]) {
	e.prev = c.head
	e.next = c.head.next
	c.head.next.prev = e
	c.head.next = e
}

func (c *LRU[V]) moveToFront(e *entry[V]) {
	e.prev.next = e.next
	e.next.prev = e.prev
	c.addToFront(e)
}

func (c *LRU[V]) removeEntry(e *entry[V]) {
	e.prev.next = e.next
	e.next.prev = e.prev
	delete(c.items, e.key)
}

func (c *LRU[V]) evictOldest() {
	oldest := c.tail.prev
	if oldest == c.head {
		return
	}
	c.removeEntry(oldest)
	c.evictions++
	if c.onEvict != nil {
		c.onEvict(oldest.key, oldest.value)
	}
}
