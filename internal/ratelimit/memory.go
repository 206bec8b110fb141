package ratelimit

import (
	"context"
	"sync"
	"time"
)

const defaultSweepThreshold = 1024

type memoryEntry struct {
	hits   []time.Time
	window time.Duration
}

// MemoryStore is the single-instance store. Keys whose hits have all aged
// out are dropped by a sweep once the map grows past a threshold, so one key
// per client address cannot grow it without bound.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]*memoryEntry
	sweepAt int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]*memoryEntry), sweepAt: defaultSweepThreshold}
}

func (store *MemoryStore) CountRecent(_ context.Context, key string, now time.Time, window time.Duration) (int, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	return len(store.pruneLocked(key, now, window)), nil
}

func (store *MemoryStore) Add(_ context.Context, key string, now time.Time, window time.Duration) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	pruned := store.pruneLocked(key, now, window)
	store.entries[key] = &memoryEntry{hits: append(pruned, now), window: window}
	if len(store.entries) > store.sweepAt {
		store.sweepLocked(now)
	}
	return nil
}

func (store *MemoryStore) Reset(_ context.Context, key string) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	delete(store.entries, key)
	return nil
}

func (store *MemoryStore) keyCount() int {
	store.mu.Lock()
	defer store.mu.Unlock()
	return len(store.entries)
}

func (store *MemoryStore) pruneLocked(key string, now time.Time, window time.Duration) []time.Time {
	entry, ok := store.entries[key]
	if !ok || len(entry.hits) == 0 {
		return []time.Time{}
	}

	pruned := recentHits(entry.hits, now, window)
	if len(pruned) == 0 {
		delete(store.entries, key)
		return []time.Time{}
	}

	entry.hits = pruned
	entry.window = window
	return pruned
}

// sweepLocked prunes every key with the window it was last written with. The
// next sweep waits until the map doubles from what survived.
func (store *MemoryStore) sweepLocked(now time.Time) {
	for key, entry := range store.entries {
		pruned := recentHits(entry.hits, now, entry.window)
		if len(pruned) == 0 {
			delete(store.entries, key)
			continue
		}
		entry.hits = pruned
	}
	store.sweepAt = max(defaultSweepThreshold, 2*len(store.entries))
}

func recentHits(values []time.Time, now time.Time, window time.Duration) []time.Time {
	threshold := now.Add(-window)
	pruned := make([]time.Time, 0, len(values))
	for _, value := range values {
		if value.After(threshold) {
			pruned = append(pruned, value)
		}
	}
	return pruned
}
