package cli

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/Veraticus/spice-categorizer/internal/engine"
	"github.com/Veraticus/spice-categorizer/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderResults(t *testing.T) {
	results := []engine.Result{
		result("Uber", "UBER *TRIP", "-23.45", model.CategoryMatch{CategoryID: "transportation", Method: model.MethodExact, Confidence: 0.95}),
		result("", "ACME PAYROLL", "2500", model.CategoryMatch{CategoryID: "income-salary", Method: model.MethodPattern, Confidence: 0.85}),
		{Transaction: model.Transaction{Description: "no amount"}, Err: errors.New("invalid transaction")},
	}

	var out bytes.Buffer
	require.NoError(t, RenderResults(&out, results))

	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	require.GreaterOrEqual(t, len(lines), 4)

	output := out.String()
	for _, want := range []string{"Transaction", "Uber", "-23.45", "transportation", "exact", "95%", "ACME PAYROLL", "2500.00", "pattern", "no amount", "—", ErrorIcon} {
		assert.Contains(t, output, want)
	}
}

func TestRenderStats(t *testing.T) {
	stats := engine.Stats{
		Total:             3,
		Categorized:       2,
		Failed:            1,
		AverageConfidence: 0.9,
		ByMethod:          map[model.Method]int{model.MethodExact: 1, model.MethodPattern: 1},
		ByCategory:        map[string]int{"transportation": 1, "income-salary": 1},
		TopMerchants:      []engine.MerchantCount{{MerchantKey: "uber", Count: 1}},
	}

	output := RenderStats(stats)
	for _, want := range []string{"Categorization Summary", "Total transactions: 3", "Categorized: 2", "Failed: 1", "90%", "exact", "fallback", "50.0%", "transportation: 1", "uber: 1"} {
		assert.Contains(t, output, want)
	}
}

func TestRenderStats_Empty(t *testing.T) {
	output := RenderStats(engine.Stats{})
	assert.Contains(t, output, "Total transactions: 0")
	assert.NotContains(t, output, "Failed")
	assert.NotContains(t, output, "Top merchants")
}

func TestRenderTables(t *testing.T) {
	tests := []struct {
		render func(*bytes.Buffer) error
		name   string
		want   []string
	}{
		{
			name: "merchants",
			render: func(b *bytes.Buffer) error {
				return RenderMerchants(b, []model.MerchantMapping{
					{MerchantKey: "uber", CategoryID: "transportation", Source: model.SourceLearned, UseCount: 3},
				})
			},
			want: []string{"Merchant", "uber", "transportation", "LEARNED", "3"},
		},
		{
			name: "rules",
			render: func(b *bytes.Buffer) error {
				return RenderRules(b, []model.Rule{{ID: "r1", Pattern: `\bpayroll\b`, CategoryID: "income-salary", Position: 1}})
			},
			want: []string{"Pattern", "r1", `\bpayroll\b`, "income-salary"},
		},
		{
			name: "categories",
			render: func(b *bytes.Buffer) error {
				return RenderCategories(b, testCategories)
			},
			want: []string{"housing", "Shopping", "expense"},
		},
		{
			name: "corrections",
			render: func(b *bytes.Buffer) error {
				return RenderCorrections(b, []model.Correction{
					{MerchantKey: "uber", PreviousCategoryID: "transportation", CategoryID: "travel", CreatedAt: time.Now()},
					{Description: "mystery", CategoryID: "other", CreatedAt: time.Now()},
				})
			},
			want: []string{"uber", "transportation", "travel", "mystery", "—"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var b bytes.Buffer
			require.NoError(t, tt.render(&b))
			for _, want := range tt.want {
				assert.Contains(t, b.String(), want)
			}
		})
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in    string
		want  string
		width int
	}{
		{in: "short", width: 10, want: "short"},
		{in: "exactly10!", width: 10, want: "exactly10!"},
		{in: "much too long", width: 5, want: "much…"},
		{in: "日本語テキスト", width: 3, want: "日本…"},
		{in: "ab", width: 1, want: "a"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, truncate(tt.in, tt.width))
		})
	}
}
