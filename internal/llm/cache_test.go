package llm

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/Veraticus/spice-categorizer/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	now time.Time
	mu  sync.Mutex
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestAnswerCache(t *testing.T) {
	dining := model.Suggestion{CategoryID: "dining", Confidence: 0.9}

	t.Run("keys ignore case and padding", func(t *testing.T) {
		cache := newAnswerCache(time.Minute)
		cache.remember("  Blue Bottle Coffee ", dining)

		got, ok := cache.lookup("BLUE BOTTLE COFFEE")
		require.True(t, ok)
		assert.Equal(t, dining, got)

		_, ok = cache.lookup("blue bottle")
		assert.False(t, ok)
	})

	t.Run("answers expire", func(t *testing.T) {
		clock := newFakeClock()
		cache := newAnswerCache(time.Minute)
		cache.now = clock.Now

		cache.remember("shell oil", model.Suggestion{CategoryID: "transportation", Confidence: 0.7})
		clock.Advance(59 * time.Second)
		_, ok := cache.lookup("shell oil")
		assert.True(t, ok)

		clock.Advance(time.Second)
		_, ok = cache.lookup("shell oil")
		assert.False(t, ok)
		assert.Zero(t, cache.size(), "expired answer is dropped on read")
	})

	t.Run("growth sweeps expired answers", func(t *testing.T) {
		clock := newFakeClock()
		cache := newAnswerCache(time.Minute)
		cache.now = clock.Now

		for i := 0; i < 63; i++ {
			cache.remember(fmt.Sprintf("old %d", i), dining)
		}
		clock.Advance(2 * time.Minute)
		cache.remember("fresh", dining)

		assert.Equal(t, 1, cache.size())
	})

	t.Run("forget clears everything", func(t *testing.T) {
		cache := newAnswerCache(0)
		assert.Equal(t, defaultAnswerTTL, cache.ttl)

		cache.remember("netflix", model.Suggestion{CategoryID: "entertainment", Confidence: 0.8})
		cache.forget()
		_, ok := cache.lookup("netflix")
		assert.False(t, ok)
	})

	t.Run("concurrent access", func(t *testing.T) {
		cache := newAnswerCache(time.Minute)

		var wg sync.WaitGroup
		for i := 0; i < 4; i++ {
			wg.Add(2)
			go func() {
				defer wg.Done()
				for j := 0; j < 100; j++ {
					cache.remember(fmt.Sprintf("merchant %d", j), dining)
				}
			}()
			go func() {
				defer wg.Done()
				for j := 0; j < 100; j++ {
					_, _ = cache.lookup(fmt.Sprintf("merchant %d", j))
				}
			}()
		}
		wg.Wait()

		assert.Equal(t, 100, cache.size())
	})
}
