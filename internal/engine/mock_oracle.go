package engine

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/Veraticus/spice-categorizer/internal/common"
	"github.com/Veraticus/spice-categorizer/internal/model"
)

// MockOracle is a scriptable Oracle for tests and offline runs.
// Responses are keyed by lowercased query text.
type MockOracle struct {
	responses map[string]model.Suggestion
	errs      map[string]error
	fallback  *model.Suggestion
	calls     []string
	delay     time.Duration
	mu        sync.Mutex
}

// NewMockOracle creates a mock that knows no answers.
func NewMockOracle() *MockOracle {
	return &MockOracle{
		responses: make(map[string]model.Suggestion),
		errs:      make(map[string]error),
	}
}

// SetResponse scripts the suggestion for text.
func (m *MockOracle) SetResponse(text string, s model.Suggestion) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses[strings.ToLower(text)] = s
}

// SetError scripts a failure for text.
func (m *MockOracle) SetError(text string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errs[strings.ToLower(text)] = err
}

// SetDefault scripts the answer for texts without a specific response.
func (m *MockOracle) SetDefault(s model.Suggestion) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fallback = &s
}

// SetDelay makes every call wait d or until ctx ends.
func (m *MockOracle) SetDelay(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.delay = d
}

// SuggestCategory implements Oracle.
func (m *MockOracle) SuggestCategory(ctx context.Context, text string) (model.Suggestion, error) {
	key := strings.ToLower(text)

	m.mu.Lock()
	m.calls = append(m.calls, text)
	delay := m.delay
	resp, hasResp := m.responses[key]
	err := m.errs[key]
	fallback := m.fallback
	m.mu.Unlock()

	if delay > 0 {
		select {
		case <-ctx.Done():
			return model.Suggestion{}, ctx.Err()
		case <-time.After(delay):
		}
	}

	switch {
	case err != nil:
		return model.Suggestion{}, err
	case hasResp:
		return resp, nil
	case fallback != nil:
		return *fallback, nil
	default:
		return model.Suggestion{}, common.ErrNoSuggestion
	}
}

// Calls returns the query texts received so far.
func (m *MockOracle) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.calls))
	copy(out, m.calls)
	return out
}
