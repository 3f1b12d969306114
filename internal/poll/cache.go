package poll

import (
	"encoding/json"
	"sync"
	"time"

	"commandcenter/internal/domain"
)

// Entry is the last known state of one query under one system mode.
type Entry struct {
	Key         string            `json:"key"`
	Mode        domain.SystemMode `json:"mode"`
	Data        json.RawMessage   `json:"data"`
	FetchedAt   time.Time         `json:"fetchedAt"`
	LastError   string            `json:"lastError,omitempty"`
	LastErrorAt time.Time         `json:"lastErrorAt"`
	Stale       bool              `json:"stale"`
	Fetches     int               `json:"fetches"`
	Failures    int               `json:"failures"`
}

func (e Entry) HasData() bool { return len(e.Data) > 0 }

type cacheKey struct {
	key  string
	mode domain.SystemMode
}

// Cache keeps remote resources keyed by query and mode. A failed refresh
// never discards data from an earlier success.
type Cache struct {
	mu sync.RWMutex
	m  map[cacheKey]Entry
}

func NewCache() *Cache {
	return &Cache{m: make(map[cacheKey]Entry)}
}

func (c *Cache) Get(key string, mode domain.SystemMode) (Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.m[cacheKey{key, mode.Normalize()}]
	return e, ok
}

func (c *Cache) StoreSuccess(key string, mode domain.SystemMode, data json.RawMessage, at time.Time) Entry {
	mode = mode.Normalize()
	c.mu.Lock()
	defer c.mu.Unlock()
	e := c.m[cacheKey{key, mode}]
	e.Key, e.Mode = key, mode
	e.Data = data
	e.FetchedAt = at
	e.LastError = ""
	e.Stale = false
	e.Fetches++
	c.m[cacheKey{key, mode}] = e
	return e
}

func (c *Cache) StoreFailure(key string, mode domain.SystemMode, err error, at time.Time) Entry {
	mode = mode.Normalize()
	c.mu.Lock()
	defer c.mu.Unlock()
	e := c.m[cacheKey{key, mode}]
	e.Key, e.Mode = key, mode
	e.LastError = err.Error()
	e.LastErrorAt = at
	e.Stale = e.HasData()
	e.Fetches++
	e.Failures++
	c.m[cacheKey{key, mode}] = e
	return e
}
