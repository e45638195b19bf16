package cli

import (
	"testing"

	"github.com/Veraticus/spice-categorizer/internal/model"
	"github.com/stretchr/testify/assert"
)

func TestFormatConfidence(t *testing.T) {
	tests := []struct {
		want       string
		confidence float64
	}{
		{want: "95%", confidence: 0.95},
		{want: "85%", confidence: 0.85},
		{want: "20%", confidence: 0.2},
		{want: "0%", confidence: 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatConfidence(tt.confidence))
	}
}

func TestMethodStyle(t *testing.T) {
	assert.Equal(t, SuccessStyle, MethodStyle(model.MethodExact))
	assert.Equal(t, SuccessStyle, MethodStyle(model.MethodPattern))
	assert.Equal(t, infoStyle, MethodStyle(model.MethodOracle))
	assert.Equal(t, warningStyle, MethodStyle(model.MethodFallback))
}

func TestStatusLines(t *testing.T) {
	assert.Contains(t, FormatSuccess("saved"), SuccessIcon+" saved")
	assert.Contains(t, FormatError("failed"), ErrorIcon+" failed")
	assert.Contains(t, FormatWarning("check"), WarningIcon+" check")
	assert.Contains(t, FormatInfo("note"), InfoIcon+" note")
	assert.Contains(t, RenderBox("Summary", "body"), "Summary")
}
