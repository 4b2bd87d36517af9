package search

import (
	"sync"
	"time"

	domsearch "github.com/juristech/acervo/internal/domain/search"
)

// Clock supplies time to the result cache so expiry is testable without
// sleeping.
type Clock interface {
	Now() time.Time
}

// SystemClock is the production Clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// defaultMaxEntries bounds cache memory; beyond it the oldest entries are
// evicted on insert.
const defaultMaxEntries = 512

type resultEntry struct {
	matches  []domsearch.Match
	storedAt time.Time
}

// ResultCache is an in-process TTL cache for search results. It is constructed
// per service instance and holds no global state, so two services never share
// entries.
type ResultCache struct {
	mu         sync.Mutex
	entries    map[string]resultEntry
	ttl        time.Duration
	maxEntries int
	clock      Clock
}

// NewResultCache creates a cache with the given TTL. A non-positive TTL
// disables caching entirely: Get always misses and Put is a no-op.
func NewResultCache(ttl time.Duration, clock Clock) *ResultCache {
	if clock == nil {
		clock = SystemClock{}
	}
	return &ResultCache{
		entries:    make(map[string]resultEntry),
		ttl:        ttl,
		maxEntries: defaultMaxEntries,
		clock:      clock,
	}
}

// Get returns a copy of the cached matches for key, or ok=false when the key
// is absent or expired. Expired entries are removed on access.
func (c *ResultCache) Get(key string) ([]domsearch.Match, bool) {
	if c == nil || c.ttl <= 0 {
		return nil, false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if c.clock.Now().Sub(entry.storedAt) >= c.ttl {
		delete(c.entries, key)
		return nil, false
	}

	out := make([]domsearch.Match, len(entry.matches))
	copy(out, entry.matches)
	return out, true
}

// Put stores matches under key, evicting expired entries first and then the
// oldest entries if the cache is still over capacity.
func (c *ResultCache) Put(key string, matches []domsearch.Match) {
	if c == nil || c.ttl <= 0 {
		return
	}

	stored := make([]domsearch.Match, len(matches))
	copy(stored, matches)

	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock.Now()
	for k, e := range c.entries {
		if now.Sub(e.storedAt) >= c.ttl {
			delete(c.entries, k)
		}
	}
	for len(c.entries) >= c.maxEntries {
		oldestKey := ""
		var oldestAt time.Time
		for k, e := range c.entries {
			if oldestKey == "" || e.storedAt.Before(oldestAt) {
				oldestKey = k
				oldestAt = e.storedAt
			}
		}
		delete(c.entries, oldestKey)
	}

	c.entries[key] = resultEntry{matches: stored, storedAt: now}
}
