package llm

import (
	"context"
	"fmt"

	"github.com/Veraticus/spice-categorizer/internal/common"
	"google.golang.org/genai"
)

const defaultGeminiModel = "gemini-2.5-flash"

// geminiClient implements the Client interface on the Gemini API.
type geminiClient struct {
	client *genai.Client
	model  string
}

func newGeminiClient(cfg Config) (Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: gemini API key is required", common.ErrMissingConfig)
	}

	model := cfg.Model
	if model == "" {
		model = defaultGeminiModel
	}

	clientCfg := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(context.Background(), clientCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	return &geminiClient{client: client, model: model}, nil
}

// Classify sends a classification request to Gemini.
func (c *geminiClient) Classify(ctx context.Context, query Query) (ClassificationResponse, error) {
	contents := []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				{Text: systemPrompt + "\n\n" + query.Prompt},
			},
		},
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, contents, nil)
	if err != nil {
		return ClassificationResponse{}, &common.RetryableError{Err: fmt.Errorf("generate content: %w", err), Retryable: true}
	}

	text := resp.Text()
	if text == "" {
		return ClassificationResponse{}, fmt.Errorf("empty response from gemini")
	}

	return parseClassification(text)
}
