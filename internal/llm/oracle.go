package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/Veraticus/spice-categorizer/internal/common"
	"github.com/Veraticus/spice-categorizer/internal/model"
	"github.com/Veraticus/spice-categorizer/internal/service"
)

// Config holds configuration for the suggestion oracle.
type Config struct {
	Provider    string
	APIKey      string
	Model       string
	BaseURL     string
	MaxRetries  int
	RetryDelay  time.Duration
	CacheTTL    time.Duration
	Timeout     time.Duration
	RateLimit   int
	Temperature float64
	MaxTokens   int
}

// Oracle suggests categories for free text by asking a provider Client.
// Answers are cached per normalized text, calls are throttled, and transient
// provider failures are retried.
type Oracle struct {
	client     Client
	answers    *answerCache
	logger     *slog.Logger
	budget     *callBudget
	categories []model.Category
	retryOpts  service.RetryOptions
	mu         sync.RWMutex
}

// NewOracle creates an oracle for the configured provider.
func NewOracle(cfg Config, logger *slog.Logger) (*Oracle, error) {
	client, err := NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create oracle client: %w", err)
	}
	return NewOracleWithClient(client, cfg, logger), nil
}

// NewOracleWithClient wraps an existing client.
func NewOracleWithClient(client Client, cfg Config, logger *slog.Logger) *Oracle {
	if logger == nil {
		logger = slog.Default()
	}

	retryOpts := service.RetryOptions{
		MaxAttempts:  cfg.MaxRetries,
		InitialDelay: cfg.RetryDelay,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
	}
	if retryOpts.MaxAttempts == 0 {
		retryOpts.MaxAttempts = 3
	}
	if retryOpts.InitialDelay == 0 {
		retryOpts.InitialDelay = time.Second
	}

	return &Oracle{
		client:    client,
		answers:   newAnswerCache(cfg.CacheTTL),
		logger:    logger,
		retryOpts: retryOpts,
		budget:    newCallBudget(cfg.RateLimit),
	}
}

// SetCategories sets the categories offered to the model. When set, answers
// naming any other category are rejected.
func (o *Oracle) SetCategories(categories []model.Category) {
	active := make([]model.Category, 0, len(categories))
	for _, c := range categories {
		if c.IsActive {
			active = append(active, c)
		}
	}

	o.mu.Lock()
	o.categories = active
	o.mu.Unlock()
	o.answers.forget()
}

func (o *Oracle) snapshotCategories() []model.Category {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.categories
}

// SuggestCategory returns the provider's best category for text.
func (o *Oracle) SuggestCategory(ctx context.Context, text string) (model.Suggestion, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return model.Suggestion{}, common.ErrNoSuggestion
	}

	if suggestion, found := o.answers.lookup(text); found {
		o.logger.Debug("oracle cache hit", "text", text)
		return suggestion, nil
	}

	if err := o.budget.wait(ctx); err != nil {
		return model.Suggestion{}, err
	}

	categories := o.snapshotCategories()
	query := Query{Text: text, Prompt: buildPrompt(text, categories)}

	var resp ClassificationResponse
	err := common.WithRetry(ctx, func() error {
		var classifyErr error
		resp, classifyErr = o.client.Classify(ctx, query)
		if errors.Is(classifyErr, common.ErrNoSuggestion) {
			return &common.RetryableError{Err: classifyErr, Retryable: false}
		}
		return classifyErr
	}, o.retryOpts)
	if err != nil {
		return model.Suggestion{}, fmt.Errorf("%w: %w", common.ErrOracleUnavailable, err)
	}

	if len(categories) > 0 && !knownCategory(categories, resp.Category) {
		o.logger.Warn("oracle suggested unknown category",
			"text", text,
			"category", resp.Category)
		return model.Suggestion{}, fmt.Errorf("%w: unknown category %q", common.ErrNoSuggestion, resp.Category)
	}

	suggestion := model.Suggestion{CategoryID: resp.Category, Confidence: resp.Confidence}
	o.answers.remember(text, suggestion)

	o.logger.Debug("oracle suggestion",
		"text", text,
		"category", suggestion.CategoryID,
		"confidence", suggestion.Confidence)

	return suggestion, nil
}

func knownCategory(categories []model.Category, id string) bool {
	for _, c := range categories {
		if c.ID == id {
			return true
		}
	}
	return false
}

// Close drops cached answers. The oracle holds no other resources.
func (o *Oracle) Close() error {
	o.answers.forget()
	return nil
}
