package pattern

import (
	"testing"

	"github.com/Veraticus/spice-categorizer/internal/common"
	"github.com/Veraticus/spice-categorizer/internal/model"
	"github.com/stretchr/testify/assert"
)

func TestValidatePattern(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		wantErr bool
	}{
		{"literal", "starbucks", false},
		{"alternation", "uber|lyft", false},
		{"word boundary", `\bPAYROLL\b`, false},
		{"empty", "", true},
		{"whitespace", "   ", true},
		{"unclosed group", "(abc", true},
		{"bad repetition", "*abc", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePattern(tt.pattern)
			if tt.wantErr {
				assert.ErrorIs(t, err, common.ErrInvalidRule)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateRule(t *testing.T) {
	assert.NoError(t, ValidateRule(model.Rule{Pattern: "gas", CategoryID: "transportation"}))
	assert.ErrorIs(t, ValidateRule(model.Rule{Pattern: "gas"}), common.ErrInvalidRule)
	assert.ErrorIs(t, ValidateRule(model.Rule{Pattern: "(gas", CategoryID: "transportation"}), common.ErrInvalidRule)
}
