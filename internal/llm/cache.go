package llm

import (
	"strings"
	"sync"
	"time"

	"github.com/Veraticus/spice-categorizer/internal/model"
)

const defaultAnswerTTL = 15 * time.Minute

type cachedAnswer struct {
	expires    time.Time
	suggestion model.Suggestion
}

// answerCache remembers provider answers per transaction text, so a batch
// full of the same description pays for one provider call. Keys ignore case
// and surrounding whitespace. Expired answers are dropped when read, and the
// whole table is swept whenever it doubles in size.
type answerCache struct {
	answers map[string]cachedAnswer
	now     func() time.Time
	ttl     time.Duration
	sweepAt int
	mu      sync.Mutex
}

func newAnswerCache(ttl time.Duration) *answerCache {
	if ttl <= 0 {
		ttl = defaultAnswerTTL
	}
	return &answerCache{
		answers: make(map[string]cachedAnswer),
		now:     time.Now,
		ttl:     ttl,
		sweepAt: 64,
	}
}

func answerKey(text string) string {
	return strings.ToLower(strings.TrimSpace(text))
}

func (c *answerCache) lookup(text string) (model.Suggestion, bool) {
	key := answerKey(text)

	c.mu.Lock()
	defer c.mu.Unlock()

	answer, ok := c.answers[key]
	if !ok {
		return model.Suggestion{}, false
	}
	if !c.now().Before(answer.expires) {
		delete(c.answers, key)
		return model.Suggestion{}, false
	}
	return answer.suggestion, true
}

func (c *answerCache) remember(text string, suggestion model.Suggestion) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	c.answers[answerKey(text)] = cachedAnswer{suggestion: suggestion, expires: now.Add(c.ttl)}

	if len(c.answers) >= c.sweepAt {
		for key, answer := range c.answers {
			if !now.Before(answer.expires) {
				delete(c.answers, key)
			}
		}
		c.sweepAt = 2 * max(len(c.answers), 32)
	}
}

// forget drops every answer; used when the offered categories change.
func (c *answerCache) forget() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.answers = make(map[string]cachedAnswer)
}

func (c *answerCache) size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.answers)
}
