package cache

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/stitts-dev/football-site/internal/clock"
)

// DefaultTTL is how long a fetched response is served from memory.
const DefaultTTL = 5 * time.Minute

// Entry is one cached backend response. Entries are replaced wholesale on Set and never
// mutated after creation.
type Entry struct {
	Key       string
	Payload   json.RawMessage
	FetchedAt time.Time
}

// Stats is a point-in-time view of the cache for health reporting.
type Stats struct {
	Entries      int           `json:"entries"`
	FreshEntries int           `json:"fresh_entries"`
	Hits         uint64        `json:"hits"`
	Misses       uint64        `json:"misses"`
	TTL          time.Duration `json:"ttl"`
}

// ResponseCache maps request keys to the last successful response for that key.
//
// A stale entry is not deleted on read; it is ignored until the next Set overwrites it.
// There is no size bound: callers use a small fixed key space (one key per endpoint and
// league). Concurrent misses for the same key are not de-duplicated; both callers fetch
// and the later Set wins.
type ResponseCache struct {
	mu      sync.RWMutex
	entries map[string]Entry
	ttl     time.Duration
	clock   clock.Clock

	hits   atomic.Uint64
	misses atomic.Uint64
}

// NewResponseCache creates a cache. A nil clock means wall-clock time; ttl <= 0 means DefaultTTL.
func NewResponseCache(ttl time.Duration, clk clock.Clock) *ResponseCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if clk == nil {
		clk = clock.Real()
	}
	return &ResponseCache{
		entries: make(map[string]Entry),
		ttl:     ttl,
		clock:   clk,
	}
}

// Get returns the payload for key when it was stored less than TTL ago.
func (c *ResponseCache) Get(key string) (json.RawMessage, bool) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok || !c.fresh(entry) {
		c.misses.Add(1)
		return nil, false
	}
	c.hits.Add(1)
	return cloneBytes(entry.Payload), true
}

// Set stores payload under key with the current time, replacing any previous entry.
func (c *ResponseCache) Set(key string, payload json.RawMessage) {
	entry := Entry{
		Key:       key,
		Payload:   cloneBytes(payload),
		FetchedAt: c.clock.Now(),
	}

	c.mu.Lock()
	c.entries[key] = entry
	c.mu.Unlock()
}

// GetJSON decodes a fresh entry into dest. It reports false on a miss or when the stored
// payload does not decode into dest.
func (c *ResponseCache) GetJSON(key string, dest interface{}) bool {
	payload, ok := c.Get(key)
	if !ok {
		return false
	}
	return json.Unmarshal(payload, dest) == nil
}

// SetJSON encodes value and stores it under key.
func (c *ResponseCache) SetJSON(key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal cache value for %s: %w", key, err)
	}
	c.Set(key, data)
	return nil
}

// Stats reports entry counts and hit/miss totals.
func (c *ResponseCache) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	fresh := 0
	for _, e := range c.entries {
		if c.fresh(e) {
			fresh++
		}
	}
	return Stats{
		Entries:      len(c.entries),
		FreshEntries: fresh,
		Hits:         c.hits.Load(),
		Misses:       c.misses.Load(),
		TTL:          c.ttl,
	}
}

func (c *ResponseCache) fresh(e Entry) bool {
	return c.clock.Now().Sub(e.FetchedAt) < c.ttl
}

// Key builds a cache key from an endpoint identifier and an ordered parameter list,
// e.g. Key("players_league", "premier-league") == "players_league_premier-league".
// Empty parameters are skipped so optional arguments do not change the key.
func Key(endpoint string, params ...string) string {
	parts := make([]string, 0, len(params)+1)
	parts = append(parts, endpoint)
	for _, p := range params {
		if p == "" {
			continue
		}
		parts = append(parts, p)
	}
	return strings.Join(parts, "_")
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
