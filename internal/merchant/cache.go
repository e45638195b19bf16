// Package merchant keeps confirmed merchant to category mappings.
package merchant

import (
	"sort"
	"sync"
	"time"

	"github.com/Veraticus/spice-categorizer/internal/model"
)

// SeedEntry is a starter mapping loaded before any learning happens.
type SeedEntry struct {
	Merchant   string
	CategoryID string
}

// Cache is the in-memory merchant mapping table. Keys are always normalized
// with model.NormalizeMerchant, so " AMAZON " and "amazon" share an entry.
// It is safe for concurrent use.
type Cache struct {
	entries map[string]model.MerchantMapping
	now     func() time.Time
	mu      sync.RWMutex
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{
		entries: make(map[string]model.MerchantMapping),
		now:     time.Now,
	}
}

// Get returns the category for a merchant.
func (c *Cache) Get(merchant string) (string, bool) {
	m, ok := c.Lookup(merchant)
	return m.CategoryID, ok
}

// Lookup returns the full mapping for a merchant.
func (c *Cache) Lookup(merchant string) (model.MerchantMapping, bool) {
	key := model.NormalizeMerchant(merchant)
	if key == "" {
		return model.MerchantMapping{}, false
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	m, ok := c.entries[key]
	return m, ok
}

// Set maps merchant to categoryID and reports whether the cache changed.
// Setting the category a merchant already has is a no-op.
func (c *Cache) Set(merchant, categoryID string, source model.MappingSource) bool {
	key := model.NormalizeMerchant(merchant)
	if key == "" || categoryID == "" {
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	existing, ok := c.entries[key]
	if ok && existing.CategoryID == categoryID {
		return false
	}

	c.entries[key] = model.MerchantMapping{
		MerchantKey: key,
		CategoryID:  categoryID,
		Source:      source,
		UseCount:    existing.UseCount,
		LastUpdated: c.now(),
	}
	return true
}

// Seed adds starter mappings for merchants the cache does not know yet and
// returns how many were added.
func (c *Cache) Seed(entries []SeedEntry) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	added := 0
	for _, e := range entries {
		key := model.NormalizeMerchant(e.Merchant)
		if key == "" || e.CategoryID == "" {
			continue
		}
		if _, ok := c.entries[key]; ok {
			continue
		}
		c.entries[key] = model.MerchantMapping{
			MerchantKey: key,
			CategoryID:  e.CategoryID,
			Source:      model.SourceSeed,
			LastUpdated: c.now(),
		}
		added++
	}
	return added
}

// Restore overlays persisted mappings, replacing whatever is cached for the
// same merchant. It returns the number of mappings applied.
func (c *Cache) Restore(mappings []model.MerchantMapping) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	applied := 0
	for _, m := range mappings {
		key := model.NormalizeMerchant(m.MerchantKey)
		if key == "" || m.CategoryID == "" {
			continue
		}
		m.MerchantKey = key
		if m.LastUpdated.IsZero() {
			m.LastUpdated = c.now()
		}
		c.entries[key] = m
		applied++
	}
	return applied
}

// Len returns the number of cached merchants.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Snapshot returns a copy of every mapping sorted by merchant key.
func (c *Cache) Snapshot() []model.MerchantMapping {
	c.mu.RLock()
	out := make([]model.MerchantMapping, 0, len(c.entries))
	for _, m := range c.entries {
		out = append(out, m)
	}
	c.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].MerchantKey < out[j].MerchantKey
	})
	return out
}
