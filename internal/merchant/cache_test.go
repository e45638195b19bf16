package merchant

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/Veraticus/spice-categorizer/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache_Normalization(t *testing.T) {
	c := NewCache()
	require.True(t, c.Set(" AMAZON ", "shopping", model.SourceLearned))

	for _, name := range []string{"amazon", "Amazon", "  amazon", "AMAZON\t"} {
		cat, ok := c.Get(name)
		assert.True(t, ok, name)
		assert.Equal(t, "shopping", cat, name)
	}
	assert.Equal(t, 1, c.Len())

	m, ok := c.Lookup("amazon")
	require.True(t, ok)
	assert.Equal(t, "amazon", m.MerchantKey)
	assert.Equal(t, model.SourceLearned, m.Source)
}

func TestCache_Set(t *testing.T) {
	tests := []struct {
		name        string
		merchant    string
		category    string
		wantChanged bool
	}{
		{"new merchant", "uber", "transportation", true},
		{"same value is a no-op", "UBER", "transportation", false},
		{"overwrite", "uber", "rideshare-work", true},
		{"empty merchant", "   ", "shopping", false},
		{"empty category", "lyft", "", false},
	}

	c := NewCache()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantChanged, c.Set(tt.merchant, tt.category, model.SourceLearned))
		})
	}

	cat, _ := c.Get("uber")
	assert.Equal(t, "rideshare-work", cat)
	_, ok := c.Get("lyft")
	assert.False(t, ok)
	_, ok = c.Get("")
	assert.False(t, ok)
}

func TestCache_SeedDoesNotOverride(t *testing.T) {
	c := NewCache()
	c.Set("uber", "rideshare-work", model.SourceLearned)

	added := c.Seed([]SeedEntry{
		{Merchant: "uber", CategoryID: "transportation"},
		{Merchant: "Netflix", CategoryID: "entertainment"},
		{Merchant: "", CategoryID: "other"},
	})
	assert.Equal(t, 1, added)

	cat, _ := c.Get("uber")
	assert.Equal(t, "rideshare-work", cat)

	m, ok := c.Lookup("netflix")
	require.True(t, ok)
	assert.Equal(t, model.SourceSeed, m.Source)
}

func TestCache_Restore(t *testing.T) {
	c := NewCache()
	c.Seed([]SeedEntry{{Merchant: "uber", CategoryID: "transportation"}})

	when := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	applied := c.Restore([]model.MerchantMapping{
		{MerchantKey: " Uber ", CategoryID: "rideshare-work", Source: model.SourceLearned, UseCount: 3, LastUpdated: when},
		{MerchantKey: "", CategoryID: "x"},
	})
	assert.Equal(t, 1, applied)

	m, ok := c.Lookup("uber")
	require.True(t, ok)
	assert.Equal(t, "rideshare-work", m.CategoryID)
	assert.Equal(t, 3, m.UseCount)
	assert.Equal(t, when, m.LastUpdated)
}

func TestCache_Snapshot(t *testing.T) {
	c := NewCache()
	c.Set("walmart", "shopping", model.SourceManual)
	c.Set("amazon", "shopping", model.SourceManual)
	c.Set("kroger", "groceries", model.SourceManual)

	snap := c.Snapshot()
	require.Len(t, snap, 3)
	assert.Equal(t, []string{"amazon", "kroger", "walmart"},
		[]string{snap[0].MerchantKey, snap[1].MerchantKey, snap[2].MerchantKey})

	snap[0].CategoryID = "mutated"
	cat, _ := c.Get("amazon")
	assert.Equal(t, "shopping", cat)
}

func TestCache_ConcurrentAccess(t *testing.T) {
	c := NewCache()
	var wg sync.WaitGroup

	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				merchant := fmt.Sprintf("merchant-%d", i%10)
				c.Set(merchant, fmt.Sprintf("cat-%d", w), model.SourceLearned)
				if cat, ok := c.Get(merchant); ok {
					assert.NotEmpty(t, cat)
				}
				_ = c.Snapshot()
			}
		}(w)
	}
	wg.Wait()

	assert.Equal(t, 10, c.Len())
	for _, m := range c.Snapshot() {
		assert.Regexp(t, `^cat-\d$`, m.CategoryID)
	}
}
