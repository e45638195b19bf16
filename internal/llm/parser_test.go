package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseClassification(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    ClassificationResponse
		wantErr bool
	}{
		{
			name:    "plain json",
			content: `{"category": "dining", "confidence": 0.8}`,
			want:    ClassificationResponse{Category: "dining", Confidence: 0.8},
		},
		{
			name:    "markdown wrapped",
			content: "```json\n{\"category\": \"groceries\", \"confidence\": 0.65}\n```",
			want:    ClassificationResponse{Category: "groceries", Confidence: 0.65},
		},
		{
			name:    "surrounding prose",
			content: `Sure! {"category": "shopping", "confidence": 0.7} Hope that helps.`,
			want:    ClassificationResponse{Category: "shopping", Confidence: 0.7},
		},
		{
			name:    "percentage string",
			content: `{"category": "travel", "confidence": "85%"}`,
			want:    ClassificationResponse{Category: "travel", Confidence: 0.85},
		},
		{
			name:    "numeric string",
			content: `{"category": "travel", "confidence": "0.6"}`,
			want:    ClassificationResponse{Category: "travel", Confidence: 0.6},
		},
		{
			name:    "missing category",
			content: `{"confidence": 0.9}`,
			wantErr: true,
		},
		{
			name:    "missing confidence",
			content: `{"category": "travel"}`,
			wantErr: true,
		},
		{
			name:    "garbage confidence",
			content: `{"category": "travel", "confidence": "high"}`,
			wantErr: true,
		},
		{
			name:    "not json",
			content: "CATEGORY: travel",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseClassification(tt.content)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want.Category, got.Category)
			assert.InDelta(t, tt.want.Confidence, got.Confidence, 1e-9)
		})
	}
}

func TestCleanMarkdownWrapper(t *testing.T) {
	assert.Equal(t, `{"a":1}`, cleanMarkdownWrapper("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, cleanMarkdownWrapper("```\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, cleanMarkdownWrapper(`  {"a":1}  `))
}
