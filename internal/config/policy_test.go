package config

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadYAML(t *testing.T, body string) *viper.Viper {
	t.Helper()
	v := viper.New()
	v.SetConfigType("yaml")
	require.NoError(t, v.ReadConfig(strings.NewReader(body)))
	return v
}

func TestDefaultPolicy(t *testing.T) {
	p := DefaultPolicy()
	require.NoError(t, p.Validate())

	assert.InDelta(t, 0.95, p.ExactConfidence, 1e-9)
	assert.InDelta(t, 0.85, p.PatternConfidence, 1e-9)
	assert.InDelta(t, 0.6, p.OracleThreshold, 1e-9)
	assert.Equal(t, 5*time.Second, p.OracleTimeout)
	assert.Equal(t, 4, p.MaxConcurrency)

	income := p.BandsFor(DirectionIncome)
	require.Len(t, income, 2)
	assert.Equal(t, "income-salary", income[0].CategoryID)
	assert.True(t, income[0].Above.Equal(decimal.NewFromInt(1000)))
	assert.Nil(t, income[1].Above)

	expense := p.BandsFor(DirectionExpense)
	require.Len(t, expense, 3)
	assert.Equal(t, []string{"housing", "shopping", "other"},
		[]string{expense[0].CategoryID, expense[1].CategoryID, expense[2].CategoryID})

	assert.Len(t, p.SeedMerchants, 17)
}

func TestLoadPolicy(t *testing.T) {
	t.Run("nil viper returns defaults", func(t *testing.T) {
		p, err := LoadPolicy(nil)
		require.NoError(t, err)
		assert.Equal(t, DefaultPolicy().MaxConcurrency, p.MaxConcurrency)
	})

	t.Run("missing policy key returns defaults", func(t *testing.T) {
		p, err := LoadPolicy(loadYAML(t, "logging:\n  level: debug\n"))
		require.NoError(t, err)
		assert.InDelta(t, 0.6, p.OracleThreshold, 1e-9)
	})

	t.Run("overrides scalars and keeps default bands", func(t *testing.T) {
		p, err := LoadPolicy(loadYAML(t, `
policy:
  oracle_threshold: 0.7
  oracle_timeout: 2s
  max_concurrency: 8
`))
		require.NoError(t, err)
		assert.InDelta(t, 0.7, p.OracleThreshold, 1e-9)
		assert.InDelta(t, 0.95, p.ExactConfidence, 1e-9)
		assert.Equal(t, 2*time.Second, p.OracleTimeout)
		assert.Equal(t, 8, p.MaxConcurrency)
		assert.Len(t, p.Fallback, 5)
	})

	t.Run("replaces fallback table and seeds", func(t *testing.T) {
		p, err := LoadPolicy(loadYAML(t, `
policy:
  fallback:
    - direction: income
      category: income-other
      confidence: 0.3
    - direction: expense
      above: "50.50"
      category: shopping
      confidence: 0.3
    - direction: expense
      category: other
      confidence: 0.2
  seed_merchants:
    - merchant: costco
      category: groceries
`))
		require.NoError(t, err)
		expense := p.BandsFor(DirectionExpense)
		require.Len(t, expense, 2)
		assert.True(t, expense[0].Above.Equal(decimal.RequireFromString("50.5")))
		assert.Equal(t, []SeedMerchant{{Merchant: "costco", CategoryID: "groceries"}}, p.SeedMerchants)
	})

	t.Run("disable seeds", func(t *testing.T) {
		p, err := LoadPolicy(loadYAML(t, "policy:\n  disable_seeds: true\n"))
		require.NoError(t, err)
		assert.Empty(t, p.SeedMerchants)
	})

	errorCases := []struct {
		name string
		body string
		want string
	}{
		{"bad timeout", "policy:\n  oracle_timeout: soon\n", "oracle_timeout"},
		{"threshold out of range", "policy:\n  oracle_threshold: 1.5\n", "oracle_threshold"},
		{"pattern above exact", "policy:\n  exact_confidence: 0.8\n  pattern_confidence: 0.9\n", "must be below exact_confidence"},
		{"bad decimal", `
policy:
  fallback:
    - {direction: income, above: "lots", category: income-salary, confidence: 0.4}
`, "invalid threshold"},
	}
	for _, tc := range errorCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := LoadPolicy(loadYAML(t, tc.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestPolicyValidateBands(t *testing.T) {
	d := func(s string) *decimal.Decimal { return mustDecimal(s) }
	income := FallbackBand{Direction: DirectionIncome, CategoryID: "income-other", Confidence: 0.3}

	tests := []struct {
		name    string
		bands   []FallbackBand
		wantErr string
	}{
		{
			name: "valid",
			bands: []FallbackBand{income,
				{Direction: DirectionExpense, Above: d("100"), CategoryID: "shopping", Confidence: 0.3},
				{Direction: DirectionExpense, CategoryID: "other", Confidence: 0.2}},
		},
		{
			name:    "missing expense bands",
			bands:   []FallbackBand{income},
			wantErr: "no expense bands",
		},
		{
			name: "catch-all not last",
			bands: []FallbackBand{income,
				{Direction: DirectionExpense, CategoryID: "other", Confidence: 0.2},
				{Direction: DirectionExpense, Above: d("100"), CategoryID: "shopping", Confidence: 0.3}},
			wantErr: "only the last band",
		},
		{
			name: "increasing thresholds",
			bands: []FallbackBand{income,
				{Direction: DirectionExpense, Above: d("100"), CategoryID: "shopping", Confidence: 0.3},
				{Direction: DirectionExpense, Above: d("1000"), CategoryID: "housing", Confidence: 0.4},
				{Direction: DirectionExpense, CategoryID: "other", Confidence: 0.2}},
			wantErr: "strictly decreasing",
		},
		{
			name: "band as confident as pattern",
			bands: []FallbackBand{income,
				{Direction: DirectionExpense, CategoryID: "other", Confidence: 0.85}},
			wantErr: "below pattern_confidence",
		},
		{
			name: "unknown direction",
			bands: []FallbackBand{income,
				{Direction: DirectionExpense, CategoryID: "other", Confidence: 0.2},
				{Direction: "sideways", CategoryID: "other", Confidence: 0.2}},
			wantErr: "unknown direction",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultPolicy()
			p.Fallback = tt.bands
			err := p.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestPolicyValidateConfidenceOrder(t *testing.T) {
	tests := []struct {
		name    string
		exact   float64
		pattern float64
		wantErr string
	}{
		{name: "defaults", exact: 0.95, pattern: 0.85},
		{name: "pattern equal to exact", exact: 0.9, pattern: 0.9, wantErr: "below exact_confidence"},
		{name: "pattern above exact", exact: 0.8, pattern: 0.9, wantErr: "below exact_confidence"},
		{name: "pattern at or below a band", exact: 0.95, pattern: 0.4, wantErr: "below pattern_confidence"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultPolicy()
			p.ExactConfidence = tt.exact
			p.PatternConfidence = tt.pattern
			err := p.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestExpandPath(t *testing.T) {
	t.Setenv("CATEGORIZE_TEST_DIR", "/tmp/categorize")

	assert.Equal(t, "", ExpandPath(""))
	assert.Equal(t, "/tmp/categorize/db.sqlite", ExpandPath("$CATEGORIZE_TEST_DIR/db.sqlite"))
	assert.Equal(t, "/abs/path", ExpandPath("/abs/path"))
	assert.False(t, strings.HasPrefix(ExpandPath("~/x"), "~"))
}
