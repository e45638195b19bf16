package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/Veraticus/spice-categorizer/internal/common"
)

// remoteClient asks an external category service for a suggestion:
// POST {base}/suggest {"text": ...} -> {"categoryId": ..., "confidence": ...}.
type remoteClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

func newRemoteClient(cfg Config) (Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("%w: remote oracle requires a base URL", common.ErrMissingConfig)
	}
	return &remoteClient{
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		httpClient: newHTTPClient(cfg.Timeout),
	}, nil
}

type remoteRequest struct {
	Text string `json:"text"`
}

type remoteResponse struct {
	CategoryID string  `json:"categoryId"`
	Confidence float64 `json:"confidence"`
}

// Classify posts the raw query text to the suggestion endpoint.
func (c *remoteClient) Classify(ctx context.Context, query Query) (ClassificationResponse, error) {
	jsonBody, err := json.Marshal(remoteRequest{Text: query.Text})
	if err != nil {
		return ClassificationResponse{}, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/suggest", bytes.NewReader(jsonBody))
	if err != nil {
		return ClassificationResponse{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return ClassificationResponse{}, &common.RetryableError{Err: fmt.Errorf("request failed: %w", err), Retryable: true}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return ClassificationResponse{}, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode == http.StatusNoContent {
		return ClassificationResponse{}, common.ErrNoSuggestion
	}
	if resp.StatusCode != http.StatusOK {
		return ClassificationResponse{}, statusError("category service", resp.StatusCode, body)
	}

	var out remoteResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return ClassificationResponse{}, fmt.Errorf("failed to parse response: %w", err)
	}
	if out.CategoryID == "" {
		return ClassificationResponse{}, common.ErrNoSuggestion
	}

	return ClassificationResponse{Category: out.CategoryID, Confidence: out.Confidence}, nil
}
