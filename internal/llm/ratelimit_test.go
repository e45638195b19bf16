package llm

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCallBudget(t *testing.T) {
	t.Run("burst then wait for the next slot", func(t *testing.T) {
		clock := newFakeClock()
		b := newCallBudget(60)
		b.now = clock.Now
		b.last = clock.Now()

		for i := 0; i < 60; i++ {
			require.Zero(t, b.reserve(), "call %d", i)
		}
		assert.Equal(t, time.Second, b.reserve())

		clock.Advance(500 * time.Millisecond)
		assert.Equal(t, 500*time.Millisecond, b.reserve())

		clock.Advance(500 * time.Millisecond)
		assert.Zero(t, b.reserve())
	})

	t.Run("idle time never exceeds the burst", func(t *testing.T) {
		clock := newFakeClock()
		b := newCallBudget(2)
		b.now = clock.Now
		b.last = clock.Now()

		clock.Advance(time.Hour)
		assert.Zero(t, b.reserve())
		assert.Zero(t, b.reserve())
		assert.Positive(t, b.reserve())
	})

	t.Run("default rate", func(t *testing.T) {
		b := newCallBudget(0)
		assert.Equal(t, time.Second, b.interval)
	})

	t.Run("wait honours cancellation", func(t *testing.T) {
		b := newCallBudget(1)
		require.NoError(t, b.wait(context.Background()))

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()
		assert.ErrorIs(t, b.wait(ctx), context.DeadlineExceeded)
	})

	t.Run("wait returns once a slot opens", func(t *testing.T) {
		b := newCallBudget(600)
		for b.reserve() == 0 {
		}

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		assert.NoError(t, b.wait(ctx))
	})
}
