// Package cache holds computed snapshots for a short TTL so repeated
// dashboard polls within the Cache-Control window don't recompute the
// whole pipeline.
package cache

import (
	"sync"
	"time"

	"marketpulse/internal/models"
)

type entry struct {
	snapshot  *models.AnalyticsSnapshot
	expiresAt time.Time
}

type SnapshotCache struct {
	ttl     time.Duration
	mu      sync.RWMutex
	entries map[string]entry
}

func New(ttl time.Duration) *SnapshotCache {
	return &SnapshotCache{
		ttl:     ttl,
		entries: make(map[string]entry),
	}
}

// Get returns the cached snapshot for the key if it has not expired.
// Expired entries are left for Sweep; the staleness check alone keeps
// reads correct.
func (c *SnapshotCache) Get(key string) (*models.AnalyticsSnapshot, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[key]
	if !ok || time.Now().After(e.expiresAt) {
		return nil, false
	}
	return e.snapshot, true
}

func (c *SnapshotCache) Set(key string, snapshot *models.AnalyticsSnapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry{snapshot: snapshot, expiresAt: time.Now().Add(c.ttl)}
}

// Sweep removes expired entries and returns how many were dropped.
func (c *SnapshotCache) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	now := time.Now()
	for key, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}

// Clear empties the cache. Runs on date rollover: the snapshot windows
// are anchored to "today", so yesterday's entries are wrong even if
// their TTL has not elapsed.
func (c *SnapshotCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]entry)
}

func (c *SnapshotCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
