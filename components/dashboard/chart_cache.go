package dashboard

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"sync"
	"time"
)

// RenderCache memoizes rendered chart markup. It keeps one entry per slot (a chart
// mount); a different fingerprint replaces the entry instead of adding one.
type RenderCache interface {
	GetOrRender(slot, fingerprint string, render func() (string, error)) (string, error)
}

// ChartCache is an in-memory TTL cache for rendered charts holding at most one entry
// per slot. Expired entries are dropped lazily on lookup; Purge sweeps the rest.
type ChartCache struct {
	ttl     time.Duration
	now     func() time.Time
	mu      sync.RWMutex
	entries map[string]cachedChart
}

type cachedChart struct {
	fingerprint string
	html        string
	expires     time.Time
}

// NewChartCache builds a cache with the provided TTL.
func NewChartCache(ttl time.Duration) *ChartCache {
	return &ChartCache{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]cachedChart),
	}
}

// GetOrRender returns the slot's markup when its fingerprint matches, otherwise it
// renders and replaces the slot.
func (c *ChartCache) GetOrRender(slot, fingerprint string, render func() (string, error)) (string, error) {
	if html, ok := c.get(slot, fingerprint); ok {
		return html, nil
	}
	html, err := render()
	if err != nil {
		return "", err
	}
	c.set(slot, fingerprint, html)
	return html, nil
}

func (c *ChartCache) get(slot, fingerprint string) (string, bool) {
	if c == nil || c.ttl <= 0 {
		return "", false
	}
	c.mu.RLock()
	entry, ok := c.entries[slot]
	c.mu.RUnlock()
	if !ok || entry.fingerprint != fingerprint {
		return "", false
	}
	if c.now().After(entry.expires) {
		c.mu.Lock()
		if current, ok := c.entries[slot]; ok && current.fingerprint == fingerprint {
			delete(c.entries, slot)
		}
		c.mu.Unlock()
		return "", false
	}
	return entry.html, true
}

func (c *ChartCache) set(slot, fingerprint, html string) {
	if c == nil || c.ttl <= 0 {
		return
	}
	c.mu.Lock()
	c.entries[slot] = cachedChart{
		fingerprint: fingerprint,
		html:        html,
		expires:     c.now().Add(c.ttl),
	}
	c.mu.Unlock()
}

// configHash returns a deterministic hash for a chart dataset or any JSON value.
func configHash(cfg any) string {
	if cfg == nil {
		return "empty"
	}
	b, err := json.Marshal(cfg)
	if err != nil {
		return "invalid"
	}
	sum := sha1.Sum(b)
	return hex.EncodeToString(sum[:])
}

// Purge drops every expired entry and returns how many were removed.
func (c *ChartCache) Purge() int {
	if c == nil {
		return 0
	}
	now := c.now()
	c.mu.Lock()
	defer c.mu.Unlock()
	removed := 0
	for key, entry := range c.entries {
		if now.After(entry.expires) {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}

// Len reports the number of cached entries, expired or not.
func (c *ChartCache) Len() int {
	if c == nil {
		return 0
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
