package weather

import (
	"sync"
	"time"
)

type cacheEntry[T any] struct {
	value     T
	fetchedAt time.Time
}

// ttlCache holds provider responses by normalized query. Entries are fresh
// for ttl and kept for max(ttl, retain) so they can stand in when the
// provider fails.
type ttlCache[T any] struct {
	ttl    time.Duration
	retain time.Duration
	now    func() time.Time

	mu        sync.RWMutex
	entries   map[string]cacheEntry[T]
	lastSweep time.Time
}

const sweepInterval = 5 * time.Minute

func newTTLCache[T any](ttl, staleFor time.Duration) *ttlCache[T] {
	return &ttlCache[T]{
		ttl:     ttl,
		retain:  max(ttl, staleFor),
		now:     time.Now,
		entries: map[string]cacheEntry[T]{},
	}
}

func (c *ttlCache[T]) enabled() bool { return c.ttl > 0 }

// fresh returns the value for key while it is within ttl.
func (c *ttlCache[T]) fresh(key string) (T, bool) {
	return c.within(key, c.ttl)
}

// within returns the value for key if it was fetched less than age ago.
func (c *ttlCache[T]) within(key string, age time.Duration) (T, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok || !c.now().Before(e.fetchedAt.Add(age)) {
		var zero T
		return zero, false
	}
	return e.value, true
}

// put stores value and sweeps out entries past retention at most once per
// sweepInterval. It returns how many entries the sweep removed.
func (c *ttlCache[T]) put(key string, value T) int {
	now := c.now()
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = cacheEntry[T]{value: value, fetchedAt: now}
	if now.Sub(c.lastSweep) < sweepInterval {
		return 0
	}
	c.lastSweep = now

	removed := 0
	for k, e := range c.entries {
		if now.After(e.fetchedAt.Add(c.retain)) {
			delete(c.entries, k)
			removed++
		}
	}
	return removed
}

func (c *ttlCache[T]) reset() {
	c.mu.Lock()
	c.entries = map[string]cacheEntry[T]{}
	c.mu.Unlock()
}

// counts returns total and fresh entry counts.
func (c *ttlCache[T]) counts() (total, fresh int) {
	now := c.now()
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, e := range c.entries {
		if now.Before(e.fetchedAt.Add(c.ttl)) {
			fresh++
		}
	}
	return len(c.entries), fresh
}
