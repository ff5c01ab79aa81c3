package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartnotes/summarizer/pkg/kvstore"
)

func TestSummaryCache_RoundTrip(t *testing.T) {
	ctx := context.Background()
	cache := NewSummaryCache(10, nil)

	cache.Put(ctx, "note-1", "summary", "the full note content", "gpt-test")

	entry := cache.Get(ctx, "note-1", "the full note content")
	require.NotNil(t, entry)
	assert.Equal(t, "summary", entry.Summary)
	assert.Equal(t, "gpt-test", entry.ModelUsed)
	assert.False(t, entry.CreatedAt.IsZero())
}

func TestSummaryCache_StalenessInvalidation(t *testing.T) {
	ctx := context.Background()
	cache := NewSummaryCache(10, nil)

	cache.Put(ctx, "note-1", "s1", "contentA", "")

	// Different content: miss, and the stale entry is evicted as a side effect
	entry := cache.Get(ctx, "note-1", "contentB")
	assert.Nil(t, entry)
	assert.Equal(t, 0, cache.Stats().Size)

	// Even the original content now misses
	assert.Nil(t, cache.Get(ctx, "note-1", "contentA"))
}

func TestSummaryCache_TrailingWhitespaceIsNotAChange(t *testing.T) {
	ctx := context.Background()
	cache := NewSummaryCache(10, nil)

	cache.Put(ctx, "note-1", "s1", "contentA", "")

	entry := cache.Get(ctx, "note-1", "contentA   \n")
	require.NotNil(t, entry)
	assert.Equal(t, "s1", entry.Summary)
}

func TestSummaryCache_LRUEviction(t *testing.T) {
	ctx := context.Background()
	capacity := 5
	cache := NewSummaryCache(capacity, nil)

	for i := 0; i < capacity; i++ {
		id := fmt.Sprintf("note-%d", i)
		cache.Put(ctx, id, "summary", "content "+id, "")
	}

	// Touch everything except note-2, which becomes the LRU victim
	for i := 0; i < capacity; i++ {
		if i == 2 {
			continue
		}
		id := fmt.Sprintf("note-%d", i)
		require.NotNil(t, cache.Get(ctx, id, "content "+id))
	}

	cache.Put(ctx, "note-extra", "summary", "content extra", "")

	stats := cache.Stats()
	assert.Equal(t, capacity, stats.Size)
	assert.Nil(t, cache.Get(ctx, "note-2", "content note-2"))
	require.NotNil(t, cache.Get(ctx, "note-extra", "content extra"))
}

func TestSummaryCache_PutOverwritesSameID(t *testing.T) {
	ctx := context.Background()
	cache := NewSummaryCache(10, nil)

	cache.Put(ctx, "note-1", "old", "v1", "")
	cache.Put(ctx, "note-1", "new", "v2", "")

	assert.Equal(t, 1, cache.Stats().Size)
	entry := cache.Get(ctx, "note-1", "v2")
	require.NotNil(t, entry)
	assert.Equal(t, "new", entry.Summary)
}

func TestSummaryCache_PeekAndIsValidAreSideEffectFree(t *testing.T) {
	ctx := context.Background()
	cache := NewSummaryCache(10, nil)

	cache.Put(ctx, "note-1", "s1", "contentA", "")

	// A stale Peek must not evict
	assert.Nil(t, cache.Peek("note-1", "contentB"))
	assert.False(t, cache.IsValid("note-1", "contentB"))
	assert.Equal(t, 1, cache.Stats().Size)

	assert.True(t, cache.IsValid("note-1", "contentA"))
	require.NotNil(t, cache.Peek("note-1", "contentA"))
}

func TestSummaryCache_RemoveAndClear(t *testing.T) {
	ctx := context.Background()
	cache := NewSummaryCache(10, nil)

	cache.Put(ctx, "note-1", "s1", "a", "")
	cache.Put(ctx, "note-2", "s2", "b", "")

	cache.Remove(ctx, "note-1")
	cache.Remove(ctx, "missing") // no-op
	assert.Equal(t, 1, cache.Stats().Size)

	cache.Clear(ctx)
	stats := cache.Stats()
	assert.Equal(t, 0, stats.Size)
	assert.Empty(t, stats.OldestID)
}

func TestSummaryCache_PersistenceRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := kvstore.NewMemoryStore()

	cache := NewSummaryCache(10, store)
	cache.Put(ctx, "note-1", "persisted summary", "contentA", "gpt-test")
	cache.Put(ctx, "note-2", "other", "contentB", "")

	// A fresh cache over the same store sees the previous state
	restored := NewSummaryCache(10, store)
	assert.Equal(t, 2, restored.Stats().Size)
	entry := restored.Get(ctx, "note-1", "contentA")
	require.NotNil(t, entry)
	assert.Equal(t, "persisted summary", entry.Summary)
	assert.Equal(t, "gpt-test", entry.ModelUsed)
}

func TestSummaryCache_RestoreHonorsCapacity(t *testing.T) {
	ctx := context.Background()
	store := kvstore.NewMemoryStore()

	cache := NewSummaryCache(10, store)
	for i := 0; i < 6; i++ {
		id := fmt.Sprintf("note-%d", i)
		cache.Put(ctx, id, "s", "content "+id, "")
	}

	restored := NewSummaryCache(3, store)
	stats := restored.Stats()
	assert.Equal(t, 3, stats.Size)
	// The most recently used survive the shrink
	assert.True(t, restored.IsValid("note-5", "content note-5"))
	assert.False(t, restored.IsValid("note-0", "content note-0"))
}

type failingStore struct{}

func (failingStore) GetString(ctx context.Context, key string) (string, bool, error) {
	return "", false, errors.New("disk gone")
}
func (failingStore) SetString(ctx context.Context, key, value string) error {
	return errors.New("disk gone")
}
func (failingStore) GetStringList(ctx context.Context, key string) ([]string, bool, error) {
	return nil, false, errors.New("disk gone")
}
func (failingStore) SetStringList(ctx context.Context, key string, values []string) error {
	return errors.New("disk gone")
}
func (failingStore) Remove(ctx context.Context, key string) error {
	return errors.New("disk gone")
}

func TestSummaryCache_PersistenceFailuresAreNonFatal(t *testing.T) {
	ctx := context.Background()
	cache := NewSummaryCache(10, failingStore{})

	cache.Put(ctx, "note-1", "s1", "contentA", "")

	entry := cache.Get(ctx, "note-1", "contentA")
	require.NotNil(t, entry)
	assert.Equal(t, "s1", entry.Summary)

	cache.Clear(ctx)
	assert.Equal(t, 0, cache.Stats().Size)
}

func TestSummaryCache_Stats(t *testing.T) {
	ctx := context.Background()
	cache := NewSummaryCache(7, nil)

	cache.Put(ctx, "note-1", "s1", "a", "")
	cache.Put(ctx, "note-2", "s2", "b", "")

	stats := cache.Stats()
	assert.Equal(t, 2, stats.Size)
	assert.Equal(t, 7, stats.Capacity)
	assert.Equal(t, "note-1", stats.OldestID)
	assert.Equal(t, "note-2", stats.NewestID)
	assert.NotEmpty(t, stats.OldestAge)

	// A get-hit promotes note-1 to newest
	cache.Get(ctx, "note-1", "a")
	stats = cache.Stats()
	assert.Equal(t, "note-2", stats.OldestID)
	assert.Equal(t, "note-1", stats.NewestID)
}
