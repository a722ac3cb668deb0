package cache

import (
	"sync"
	"time"

	"coinboard/internal/domain"
)

// TTLTable maps a category to the time-to-live of its cache entries.
type TTLTable map[domain.Category]time.Duration

// DefaultTTLTable returns the stock per-category staleness bounds. Fast-moving
// data (prices, gas) expires quickly; slow-moving data (sentiment) lasts an hour.
func DefaultTTLTable() TTLTable {
	return TTLTable{
		domain.CategoryMarketData:       30 * time.Second,
		domain.CategoryOHLCV:            60 * time.Second,
		domain.CategoryNews:             300 * time.Second,
		domain.CategorySentiment:        3600 * time.Second,
		domain.CategoryBlockExplorer:    120 * time.Second,
		domain.CategoryRPCNode:          15 * time.Second,
		domain.CategoryWhaleTracking:    300 * time.Second,
		domain.CategoryOnChainAnalytics: 300 * time.Second,
		domain.CategoryGas:              15 * time.Second,
	}
}

// TTLFor returns the TTL for a category, defaulting to 60s for categories
// missing from the table.
func (t TTLTable) TTLFor(category domain.Category) time.Duration {
	if ttl, ok := t[category]; ok && ttl > 0 {
		return ttl
	}
	return 60 * time.Second
}

type entry struct {
	payload   any
	fetchedAt time.Time
	ttl       time.Duration
}

// Memory is an in-process cache with per-category TTLs and lazy eviction:
// an expired entry is logically absent and deleted on read.
type Memory struct {
	mu  sync.RWMutex
	m   map[string]entry
	ttl TTLTable
	now func() time.Time
}

// NewMemory creates a memory cache using the given TTL table (nil means
// defaults).
func NewMemory(ttl TTLTable) *Memory {
	if ttl == nil {
		ttl = DefaultTTLTable()
	}
	return &Memory{
		m:   make(map[string]entry),
		ttl: ttl,
		now: time.Now,
	}
}

// Get returns the cached payload for (category, params) if it is still fresh.
func (c *Memory) Get(category domain.Category, params domain.Params) (any, bool) {
	key := NormalizeKey(category, params)

	c.mu.RLock()
	e, ok := c.m[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if c.now().Sub(e.fetchedAt) >= e.ttl {
		c.mu.Lock()
		delete(c.m, key)
		c.mu.Unlock()
		return nil, false
	}
	return e.payload, true
}

// Put stores a payload for (category, params) with the category's TTL.
func (c *Memory) Put(category domain.Category, params domain.Params, payload any) {
	key := NormalizeKey(category, params)
	c.mu.Lock()
	c.m[key] = entry{
		payload:   payload,
		fetchedAt: c.now(),
		ttl:       c.ttl.TTLFor(category),
	}
	c.mu.Unlock()
}

// Len reports the number of entries currently stored, including entries that
// have expired but not yet been lazily evicted.
func (c *Memory) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.m)
}
