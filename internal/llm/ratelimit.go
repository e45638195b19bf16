package llm

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// callBudget throttles provider calls shared by every batch worker. It allows
// a burst of perMinute calls and then one call per minute/perMinute. The
// bucket is refilled from elapsed time when a call asks for a slot.
type callBudget struct {
	last     time.Time
	now      func() time.Time
	interval time.Duration
	slots    float64
	capacity float64
	mu       sync.Mutex
}

func newCallBudget(perMinute int) *callBudget {
	if perMinute <= 0 {
		perMinute = 60
	}
	b := &callBudget{
		now:      time.Now,
		interval: time.Minute / time.Duration(perMinute),
		slots:    float64(perMinute),
		capacity: float64(perMinute),
	}
	b.last = b.now()
	return b
}

// reserve takes a slot if one is free. Otherwise it reports how long until
// the next slot opens.
func (b *callBudget) reserve() time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.now()
	b.slots = min(b.capacity, b.slots+float64(now.Sub(b.last))/float64(b.interval))
	b.last = now

	if b.slots >= 1 {
		b.slots--
		return 0
	}
	return time.Duration((1 - b.slots) * float64(b.interval))
}

// wait blocks until the caller may contact the provider.
func (b *callBudget) wait(ctx context.Context) error {
	for {
		delay := b.reserve()
		if delay == 0 {
			return nil
		}
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("waiting for oracle call budget: %w", ctx.Err())
		case <-timer.C:
		}
	}
}
