package engine

import (
	"context"
	"sync"
	"testing"

	"github.com/Veraticus/spice-categorizer/internal/config"
	"github.com/Veraticus/spice-categorizer/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// memoryStore is an in-memory category store, mapping store, and correction log.
type memoryStore struct {
	rulesErr    error
	saveErr     error
	mappings    map[string]model.MerchantMapping
	rules       []model.Rule
	corrections []model.Correction
	saves       int
	mu          sync.Mutex
}

func newMemoryStore(rules ...model.Rule) *memoryStore {
	return &memoryStore{
		rules:    rules,
		mappings: make(map[string]model.MerchantMapping),
	}
}

func (s *memoryStore) GetCategoryRules(_ context.Context) ([]model.Rule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.rulesErr != nil {
		return nil, s.rulesErr
	}
	out := make([]model.Rule, len(s.rules))
	copy(out, s.rules)
	return out, nil
}

func (s *memoryStore) GetCategories(_ context.Context) ([]model.Category, error) {
	return nil, nil
}

func (s *memoryStore) setRules(rules ...model.Rule) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rules = rules
}

func (s *memoryStore) GetMerchantMappings(_ context.Context) ([]model.MerchantMapping, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.MerchantMapping, 0, len(s.mappings))
	for _, m := range s.mappings {
		out = append(out, m)
	}
	return out, nil
}

func (s *memoryStore) SaveMerchantMapping(_ context.Context, m *model.MerchantMapping) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saves++
	s.mappings[m.MerchantKey] = *m
	return nil
}

func (s *memoryStore) SaveCorrection(_ context.Context, c *model.Correction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.corrections = append(s.corrections, *c)
	return nil
}

func activeRule(id, pattern, category string) model.Rule {
	return model.Rule{ID: id, Pattern: pattern, CategoryID: category, IsActive: true}
}

func amount(s string) decimal.NullDecimal {
	return model.NewAmount(decimal.RequireFromString(s))
}

func txn(id, merchant, description, amt string) model.Transaction {
	return model.Transaction{ID: id, MerchantName: merchant, Description: description, Amount: amount(amt), Currency: "USD"}
}

// unseededPolicy starts with an empty merchant cache.
func unseededPolicy() config.Policy {
	p := config.DefaultPolicy()
	p.SeedMerchants = nil
	return p
}

func newTestEngine(t *testing.T, deps Deps, policy config.Policy) *Engine {
	t.Helper()
	if deps.Rules == nil {
		deps.Rules = newMemoryStore()
	}
	e, err := New(context.Background(), deps, policy)
	require.NoError(t, err)
	return e
}
