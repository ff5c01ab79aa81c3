// Package repository contains the storage-facing parts of the summary engine.
package repository

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"

	"github.com/smartnotes/summarizer/pkg/fingerprint"
	"github.com/smartnotes/summarizer/pkg/kvstore"
	"github.com/smartnotes/summarizer/sumengine/domain"
)

const (
	// DefaultCapacity bounds the cache when no capacity is configured.
	DefaultCapacity = 100

	entriesKey = "summary_cache:entries"
	orderKey   = "summary_cache:order"
)

// SummaryCache is a bounded, persisted summary store keyed by document id
// with least-recently-used eviction. Entries are invalidated by content
// fingerprint: a lookup with changed content is a miss and evicts the stale
// entry as a side effect.
//
// All methods are safe for concurrent use. Persistence failures are
// non-fatal: the cache is an optimization, not a source of truth.
type SummaryCache struct {
	mu       sync.Mutex
	entries  map[string]*domain.CacheEntry
	order    []string // index 0 = least recently used
	capacity int
	store    kvstore.Store // nil disables persistence
}

// NewSummaryCache creates a cache with the given capacity, restoring state
// from store when one is provided. A load failure starts from empty.
func NewSummaryCache(capacity int, store kvstore.Store) *SummaryCache {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	c := &SummaryCache{
		entries:  make(map[string]*domain.CacheEntry),
		capacity: capacity,
		store:    store,
	}
	c.load()
	return c
}

// Get returns the cached entry for documentID if its fingerprint still
// matches currentContent, marking it most recently used. A stale entry is
// evicted as a side effect and treated as a miss.
func (c *SummaryCache) Get(ctx context.Context, documentID, currentContent string) *domain.CacheEntry {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[documentID]
	if !ok {
		return nil
	}

	if !fingerprint.Matches(currentContent, entry.Fingerprint) {
		// Content changed since generation: drop the stale entry.
		delete(c.entries, documentID)
		c.removeFromOrder(documentID)
		c.persist(ctx)
		return nil
	}

	c.touch(documentID)
	c.persist(ctx)
	return entry
}

// Peek returns the entry for documentID if still valid for currentContent,
// without any LRU touch or eviction. Pure query.
func (c *SummaryCache) Peek(documentID, currentContent string) *domain.CacheEntry {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[documentID]
	if !ok || !fingerprint.Matches(currentContent, entry.Fingerprint) {
		return nil
	}
	return entry
}

// IsValid reports whether a cached summary exists for documentID and still
// matches currentContent. Side-effect free.
func (c *SummaryCache) IsValid(documentID, currentContent string) bool {
	return c.Peek(documentID, currentContent) != nil
}

// Put stores a new entry for documentID, superseding any previous one, marks
// it most recently used and evicts from the least-recently-used end until the
// capacity bound holds. State is persisted before Put returns.
func (c *SummaryCache) Put(ctx context.Context, documentID, summary, content, modelUsed string) *domain.CacheEntry {
	entry := &domain.CacheEntry{
		DocumentID:  documentID,
		Summary:     summary,
		Fingerprint: fingerprint.Compute(content),
		CreatedAt:   time.Now().UTC(),
		ModelUsed:   modelUsed,
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[documentID] = entry
	c.touch(documentID)

	for len(c.order) > c.capacity {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
		logrus.Debugf("[SUMMARY_CACHE] Evicted %s (capacity %d reached)", oldest, c.capacity)
	}

	c.persist(ctx)
	return entry
}

// Remove deletes the entry for documentID. No-op if absent.
func (c *SummaryCache) Remove(ctx context.Context, documentID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entries[documentID]; !ok {
		return
	}
	delete(c.entries, documentID)
	c.removeFromOrder(documentID)
	c.persist(ctx)
}

// Clear empties the cache and its persisted state.
func (c *SummaryCache) Clear(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]*domain.CacheEntry)
	c.order = nil

	if c.store == nil {
		return
	}
	if err := c.store.Remove(ctx, entriesKey); err != nil {
		logrus.WithError(err).Warn("[SUMMARY_CACHE] Failed to clear persisted entries")
	}
	if err := c.store.Remove(ctx, orderKey); err != nil {
		logrus.WithError(err).Warn("[SUMMARY_CACHE] Failed to clear persisted order")
	}
}

// Stats returns a snapshot of the cache.
func (c *SummaryCache) Stats() domain.CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	stats := domain.CacheStats{
		Size:     len(c.entries),
		Capacity: c.capacity,
	}
	if len(c.order) > 0 {
		stats.OldestID = c.order[0]
		stats.NewestID = c.order[len(c.order)-1]
		if oldest, ok := c.entries[stats.OldestID]; ok {
			stats.OldestAge = humanize.Time(oldest.CreatedAt)
		}
	}
	return stats
}

// touch moves documentID to the most-recently-used end, appending it if new.
// Caller must hold c.mu.
func (c *SummaryCache) touch(documentID string) {
	c.removeFromOrder(documentID)
	c.order = append(c.order, documentID)
}

// removeFromOrder drops documentID from the access-order list if present.
// Caller must hold c.mu.
func (c *SummaryCache) removeFromOrder(documentID string) {
	for i, id := range c.order {
		if id == documentID {
			c.order = append(c.order[:i], c.order[i+1:]...)
			return
		}
	}
}

// persist writes the full cache state to the backing store. Failures keep the
// in-memory state and are only logged. Caller must hold c.mu.
func (c *SummaryCache) persist(ctx context.Context) {
	if c.store == nil {
		return
	}

	raw, err := json.Marshal(c.entries)
	if err != nil {
		logrus.WithError(err).Warn("[SUMMARY_CACHE] Failed to marshal entries")
		return
	}
	if err := c.store.SetString(ctx, entriesKey, string(raw)); err != nil {
		logrus.WithError(err).Warn("[SUMMARY_CACHE] Failed to persist entries")
		return
	}
	if err := c.store.SetStringList(ctx, orderKey, c.order); err != nil {
		logrus.WithError(err).Warn("[SUMMARY_CACHE] Failed to persist access order")
	}
}

// load restores cache state from the backing store. Any failure or
// inconsistency starts from an empty cache.
func (c *SummaryCache) load() {
	if c.store == nil {
		return
	}
	ctx := context.Background()

	raw, ok, err := c.store.GetString(ctx, entriesKey)
	if err != nil {
		logrus.WithError(err).Warn("[SUMMARY_CACHE] Failed to load persisted entries, starting empty")
		return
	}
	if !ok {
		return
	}

	entries := make(map[string]*domain.CacheEntry)
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		logrus.WithError(err).Warn("[SUMMARY_CACHE] Corrupt persisted entries, starting empty")
		return
	}

	order, _, err := c.store.GetStringList(ctx, orderKey)
	if err != nil {
		logrus.WithError(err).Warn("[SUMMARY_CACHE] Failed to load access order, starting empty")
		return
	}

	// The access order must be a permutation of the entry keys; rebuild a
	// consistent view from whatever survives.
	c.entries = entries
	c.order = c.order[:0]
	seen := make(map[string]bool, len(entries))
	for _, id := range order {
		if _, ok := entries[id]; ok && !seen[id] {
			c.order = append(c.order, id)
			seen[id] = true
		}
	}
	for id := range entries {
		if !seen[id] {
			c.order = append(c.order, id)
		}
	}

	for len(c.order) > c.capacity {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
	}

	logrus.Debugf("[SUMMARY_CACHE] Restored %d cached summaries", len(c.entries))
}
