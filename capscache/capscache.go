// Copyright 2021 The Mellium Contributors.
// Use of this source code is governed by the BSD 2-clause
// license that can be found in the LICENSE file.

// Package capscache defines the storage-agnostic contract for a keyed
// XEP-0115 disco#info cache (node+ver string → cached query node tree) and
// an in-memory reference implementation with timestamp-driven LRU eviction,
// grounded on wocky-caps-cache.c's SQLite-backed cache of the same shape.
package capscache // import "git.sr.ht/~wocky/xmpp/capscache"

import (
	"sort"
	"sync"
	"time"

	"git.sr.ht/~wocky/xmpp/stanza"
)

// DefaultHighWatermark and DefaultLowWatermark are the eviction thresholds
// wocky_caps_cache_gc applies when WOCKY_CAPS_CACHE_SIZE is unset: once the
// entry count exceeds the high watermark, the oldest entries are deleted
// until the count reaches the low watermark (95% of the high watermark).
const (
	DefaultHighWatermark = 1000
	DefaultLowWatermark  = 950
)

// Store is the storage-agnostic contract a caps cache backend must satisfy.
// A disk-backed implementation (SQLite, a key/value store) is an external
// collaborator; this package only defines the contract and ships Memory, an
// in-memory reference implementation, as both a usable default and a
// correctness fixture for the eviction policy.
type Store interface {
	// Get returns the cached node tree for key, and whether it was found.
	Get(key string) (*stanza.NodeTree, bool)
	// Put inserts or replaces the cached node tree for key.
	Put(key string, tree *stanza.NodeTree)
	// Delete removes key from the cache, if present.
	Delete(key string)
	// Len reports the number of entries currently cached.
	Len() int
}

type entry struct {
	tree      *stanza.NodeTree
	timestamp time.Time
}

// Memory is an in-memory Store with timestamp-driven LRU eviction: once
// Len() exceeds High, the least-recently-touched entries (by Get or Put) are
// deleted until Len() reaches Low.
type Memory struct {
	mu      sync.Mutex
	entries map[string]*entry
	high    int
	low     int
	version int
	now     func() time.Time
}

// NewMemory constructs a Memory cache using DefaultHighWatermark and
// DefaultLowWatermark.
func NewMemory() *Memory {
	return &Memory{
		entries: make(map[string]*entry),
		high:    DefaultHighWatermark,
		low:     DefaultLowWatermark,
		now:     time.Now,
	}
}

// NewMemorySized constructs a Memory cache with an explicit high watermark;
// the low watermark is 95% of it (minimum 1), matching
// wocky_caps_cache_gc's WOCKY_CAPS_CACHE_SIZE-driven sizing.
func NewMemorySized(high int) *Memory {
	low := int(0.95 * float64(high))
	if low < 1 {
		low = 1
	}
	return &Memory{
		entries: make(map[string]*entry),
		high:    high,
		low:     low,
		now:     time.Now,
	}
}

// Get returns the cached node tree for key and touches its timestamp so it
// is treated as recently used.
func (m *Memory) Get(key string) (*stanza.NodeTree, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[key]
	if !ok {
		return nil, false
	}
	e.timestamp = m.now()
	return e.tree, true
}

// Put inserts or replaces the cached node tree for key, then runs eviction
// if the cache has grown past its high watermark.
func (m *Memory) Put(key string, tree *stanza.NodeTree) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = &entry{tree: tree, timestamp: m.now()}
	m.gc()
}

// Delete removes key from the cache, if present.
func (m *Memory) Delete(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
}

// Len reports the number of entries currently cached.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// gc mirrors caps_cache_gc: if the entry count exceeds the high watermark,
// delete entries oldest-timestamp-first until the count reaches the low
// watermark. Callers must hold m.mu.
func (m *Memory) gc() {
	if len(m.entries) <= m.high {
		return
	}
	keys := make([]string, 0, len(m.entries))
	for k := range m.entries {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return m.entries[keys[i]].timestamp.Before(m.entries[keys[j]].timestamp)
	})
	toRemove := len(m.entries) - m.low
	for i := 0; i < toRemove && i < len(keys); i++ {
		delete(m.entries, keys[i])
	}
}

// EnsureSchema resets the cache (deleting every entry) the first time it is
// called with a version different from the last one recorded, mirroring the
// on-disk store's DB_USER_VERSION delete-and-recreate behavior on a schema
// mismatch. It is a no-op once the cache has already been reset to the
// given version.
func (m *Memory) EnsureSchema(version int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.version == version {
		return
	}
	m.entries = make(map[string]*entry)
	m.version = version
}

var _ Store = (*Memory)(nil)
