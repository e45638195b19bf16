package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"

	"github.com/Veraticus/spice-categorizer/internal/engine"
	"github.com/Veraticus/spice-categorizer/internal/model"
)

// ErrReviewAborted is returned when the user quits a review early.
var ErrReviewAborted = errors.New("review aborted")

// ReviewAction is the user's answer for one transaction.
type ReviewAction int

// Review actions.
const (
	ReviewAccept ReviewAction = iota
	ReviewCorrect
	ReviewSkip
	ReviewQuit
)

// Decision is the outcome of reviewing one result.
type Decision struct {
	CategoryID string
	Action     ReviewAction
}

// LearnFunc applies a correction, typically engine.LearnFromCorrection.
type LearnFunc func(ctx context.Context, txn model.Transaction, categoryID string) (engine.LearnOutcome, error)

// ReviewSummary counts what happened during a review.
type ReviewSummary struct {
	Reviewed  int
	Accepted  int
	Corrected int
	Skipped   int
	Learned   int
}

// Reviewer walks the user through uncertain results and collects corrections.
type Reviewer struct {
	writer           io.Writer
	reader           *AnswerReader
	categories       map[string]model.Category
	recentCategories []string
}

// NewReviewer creates a reviewer that only accepts the given category ids.
func NewReviewer(reader io.Reader, writer io.Writer, categories []model.Category) *Reviewer {
	if reader == nil {
		reader = os.Stdin
	}
	if writer == nil {
		writer = os.Stdout
	}

	known := make(map[string]model.Category, len(categories))
	for _, c := range categories {
		known[c.ID] = c
	}

	return &Reviewer{
		reader:     NewAnswerReader(reader),
		writer:     writer,
		categories: known,
	}
}

// NeedsReview reports whether a result is worth showing: anything resolved by
// the amount heuristic or below minConfidence. Failed results are never shown.
func NeedsReview(r engine.Result, minConfidence float64) bool {
	if r.Err != nil {
		return false
	}
	return r.Match.Method == model.MethodFallback || r.Match.Confidence < minConfidence
}

// Review prompts for every result that needs review and feeds corrections to
// learn. Quitting stops the review and returns the summary so far with
// ErrReviewAborted.
func (r *Reviewer) Review(ctx context.Context, results []engine.Result, minConfidence float64, learn LearnFunc) (ReviewSummary, error) {
	var summary ReviewSummary

	pending := make([]engine.Result, 0, len(results))
	for _, res := range results {
		if NeedsReview(res, minConfidence) {
			pending = append(pending, res)
		}
	}

	for i, res := range pending {
		if _, err := fmt.Fprintf(r.writer, "\n%s\n", SubtleStyle.Render(fmt.Sprintf("Review %d of %d", i+1, len(pending)))); err != nil {
			return summary, fmt.Errorf("failed to write review header: %w", err)
		}

		decision, err := r.ReviewResult(ctx, res)
		if err != nil {
			return summary, err
		}

		switch decision.Action {
		case ReviewQuit:
			return summary, ErrReviewAborted
		case ReviewAccept:
			summary.Reviewed++
			summary.Accepted++
		case ReviewSkip:
			summary.Reviewed++
			summary.Skipped++
		case ReviewCorrect:
			summary.Reviewed++
			summary.Corrected++
			outcome, err := learn(ctx, res.Transaction, decision.CategoryID)
			if err != nil {
				return summary, fmt.Errorf("failed to learn correction: %w", err)
			}
			if outcome.Updated {
				summary.Learned++
				r.printf("%s\n", FormatSuccess(fmt.Sprintf("Future %q transactions will use %s", outcome.MerchantKey, decision.CategoryID)))
			}
		}
	}

	return summary, nil
}

// ReviewResult shows one result and reads the user's decision.
func (r *Reviewer) ReviewResult(ctx context.Context, res engine.Result) (Decision, error) {
	if err := ctx.Err(); err != nil {
		return Decision{}, err
	}

	if _, err := fmt.Fprintln(r.writer, RenderBox("Transaction Review", r.formatResult(res))); err != nil {
		return Decision{}, fmt.Errorf("failed to write transaction box: %w", err)
	}

	r.printf("%s\n", FormatPrompt("Options:"))
	r.printf("  [A] Accept %s\n", SuccessStyle.Render(res.Match.CategoryID))
	r.printf("  [C] Correct the category\n")
	r.printf("  [S] Skip\n")
	r.printf("  [Q] Quit review\n\n")

	choice, err := r.promptChoice(ctx, "Choice", []string{"a", "c", "s", "q"})
	if err != nil {
		return Decision{}, err
	}

	switch choice {
	case "a":
		r.trackCategory(res.Match.CategoryID)
		return Decision{Action: ReviewAccept, CategoryID: res.Match.CategoryID}, nil
	case "c":
		category, err := r.promptCategory(ctx)
		if err != nil {
			return Decision{}, err
		}
		r.trackCategory(category)
		return Decision{Action: ReviewCorrect, CategoryID: category}, nil
	case "q":
		return Decision{Action: ReviewQuit}, nil
	default:
		return Decision{Action: ReviewSkip}, nil
	}
}

func (r *Reviewer) formatResult(res engine.Result) string {
	t := res.Transaction

	var b strings.Builder
	fmt.Fprintf(&b, "%s Details:\n", InfoIcon)
	if m := strings.TrimSpace(t.MerchantName); m != "" {
		fmt.Fprintf(&b, "  Merchant: %s\n", m)
	}
	if d := strings.TrimSpace(t.Description); d != "" {
		fmt.Fprintf(&b, "  Description: %s\n", d)
	}
	if !t.Date.IsZero() {
		fmt.Fprintf(&b, "  Date: %s\n", t.Date.Format("Jan 2, 2006"))
	}
	fmt.Fprintf(&b, "  Amount: %s %s\n", formatAmount(t), t.Currency)
	fmt.Fprintf(&b, "\n%s Current: %s via %s (%s)",
		RobotIcon,
		res.Match.CategoryID,
		MethodStyle(res.Match.Method).Render(string(res.Match.Method)),
		FormatConfidence(res.Match.Confidence))
	return b.String()
}

func (r *Reviewer) promptChoice(ctx context.Context, prompt string, validChoices []string) (string, error) {
	for {
		r.printf("%s", FormatPrompt(prompt))

		input, err := r.reader.ReadLine(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return "", fmt.Errorf("input terminated")
			}
			return "", err
		}

		choice := strings.ToLower(input)
		for _, valid := range validChoices {
			if choice == valid {
				return choice, nil
			}
		}

		r.printf("%s\n", FormatError("Invalid choice. Please try again."))
	}
}

func (r *Reviewer) promptCategory(ctx context.Context) (string, error) {
	if len(r.recentCategories) > 0 {
		r.printf("\n%s\n", FormatInfo("Recent categories:"))
		for _, c := range r.recentCategories {
			r.printf("  • %s\n", c)
		}
	}

	for {
		r.printf("%s", FormatPrompt("Category id (? to list)"))

		input, err := r.reader.ReadLine(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return "", fmt.Errorf("input terminated")
			}
			return "", err
		}

		switch {
		case input == "":
			r.printf("%s\n", FormatError("Category cannot be empty. Please try again."))
		case input == "?":
			r.listCategories()
		case len(r.categories) > 0 && !r.known(input):
			r.printf("%s\n", FormatError(fmt.Sprintf("Unknown category %q.", input)))
		default:
			return input, nil
		}
	}
}

func (r *Reviewer) known(id string) bool {
	_, ok := r.categories[id]
	return ok
}

func (r *Reviewer) listCategories() {
	ids := make([]string, 0, len(r.categories))
	for id := range r.categories {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		r.printf("  • %s %s\n", id, SubtleStyle.Render(r.categories[id].Name))
	}
}

// trackCategory keeps the ten most recently used categories, newest first.
func (r *Reviewer) trackCategory(category string) {
	recent := []string{category}
	for _, c := range r.recentCategories {
		if c != category {
			recent = append(recent, c)
		}
	}
	if len(recent) > 10 {
		recent = recent[:10]
	}
	r.recentCategories = recent
}

func (r *Reviewer) printf(format string, args ...any) {
	if _, err := fmt.Fprintf(r.writer, format, args...); err != nil {
		slog.Warn("Failed to write review output", "error", err)
	}
}
