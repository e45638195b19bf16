package llm

import (
	"context"
)

// Client defines the interface for suggestion providers.
type Client interface {
	Classify(ctx context.Context, query Query) (ClassificationResponse, error)
}

// Query is one suggestion request. Language model providers send Prompt;
// the remote provider sends the raw Text.
type Query struct {
	Text   string
	Prompt string
}

// ClassificationResponse contains the provider's classification result.
type ClassificationResponse struct {
	Category   string
	Confidence float64
}
