package cache

import (
	"sync"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-signals/internal/types"
)

// DerivedCache holds computed indicator sets in memory under the sliding
// window policy. Expiry only discards the derived values; the durable
// snapshot they came from stays valid for the rest of its calendar day, so
// recomputation does not refetch.
type DerivedCache struct {
	window  time.Duration
	entries map[string]Entry[*types.IndicatorSet]
	mu      sync.RWMutex

	// nowFn is replaceable in tests
	nowFn func() time.Time
}

// NewDerivedCache creates a derived cache with the given validity window.
// A non-positive window falls back to the default.
func NewDerivedCache(window time.Duration) *DerivedCache {
	if window <= 0 {
		window = DefaultSlidingWindow
	}

	return &DerivedCache{
		window:  window,
		entries: make(map[string]Entry[*types.IndicatorSet]),
		nowFn:   time.Now,
	}
}

// Get returns the cached set for a key, or None when absent or expired.
// Expired entries are removed on access.
func (c *DerivedCache) Get(key string) optional.Option[*types.IndicatorSet] {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		return optional.None[*types.IndicatorSet]()
	}

	if !entry.Valid(c.nowFn()) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()

		return optional.None[*types.IndicatorSet]()
	}

	return optional.Some(entry.Value)
}

// Put stores a computed set under the sliding window policy. Writers
// serialize on the internal lock; the last writer wins.
func (c *DerivedCache) Put(key string, set *types.IndicatorSet) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = Entry[*types.IndicatorSet]{
		Value:     set,
		CreatedAt: c.nowFn(),
		Policy:    SlidingWindow{Window: c.window},
	}
}

// Invalidate drops a key regardless of validity.
func (c *DerivedCache) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, key)
}

// Len returns the number of stored entries, expired ones included.
func (c *DerivedCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.entries)
}
