package llm

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// cleanMarkdownWrapper strips ```json fences some models wrap around JSON.
func cleanMarkdownWrapper(content string) string {
	content = strings.TrimSpace(content)
	if !strings.HasPrefix(content, "```") {
		return content
	}

	content = strings.TrimPrefix(content, "```")
	if nl := strings.Index(content, "\n"); nl >= 0 {
		// Drop the language tag line.
		content = content[nl+1:]
	}
	content = strings.TrimSuffix(strings.TrimSpace(content), "```")
	return strings.TrimSpace(content)
}

// parseClassification extracts category and confidence from a model response.
// Confidence may be a number, a numeric string, or a percentage string.
func parseClassification(content string) (ClassificationResponse, error) {
	var jsonResp struct {
		Category   string          `json:"category"`
		Confidence json.RawMessage `json:"confidence"`
	}

	content = cleanMarkdownWrapper(content)

	// Tolerate prose around the object.
	if start, end := strings.Index(content, "{"), strings.LastIndex(content, "}"); start >= 0 && end > start {
		content = content[start : end+1]
	}

	if err := json.Unmarshal([]byte(content), &jsonResp); err != nil {
		return ClassificationResponse{}, fmt.Errorf("failed to parse JSON response: %w", err)
	}

	category := strings.TrimSpace(jsonResp.Category)
	if category == "" {
		return ClassificationResponse{}, fmt.Errorf("no category found in response")
	}

	confidence, err := parseConfidence(jsonResp.Confidence)
	if err != nil {
		return ClassificationResponse{}, err
	}

	return ClassificationResponse{Category: category, Confidence: confidence}, nil
}

func parseConfidence(raw json.RawMessage) (float64, error) {
	if len(raw) == 0 {
		return 0, fmt.Errorf("no confidence found in response")
	}

	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return f, nil
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, fmt.Errorf("invalid confidence %s", string(raw))
	}

	s = strings.TrimSpace(s)
	if strings.HasSuffix(s, "%") {
		pct, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimSuffix(s, "%")), 64)
		if err != nil {
			return 0, fmt.Errorf("invalid confidence %q", s)
		}
		return pct / 100.0, nil
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid confidence %q", s)
	}
	return f, nil
}
