// Package engine resolves transactions to categories through a fixed chain of
// tiers: learned merchant mappings, rule patterns, the suggestion oracle, and
// an amount heuristic.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Veraticus/spice-categorizer/internal/common"
	"github.com/Veraticus/spice-categorizer/internal/config"
	"github.com/Veraticus/spice-categorizer/internal/merchant"
	"github.com/Veraticus/spice-categorizer/internal/model"
	"github.com/Veraticus/spice-categorizer/internal/pattern"
	"github.com/Veraticus/spice-categorizer/internal/service"
)

// Deps are the collaborators an Engine talks to. Only Rules is required.
type Deps struct {
	Rules       service.CategoryStore
	Oracle      Oracle
	Mappings    service.MappingStore
	Corrections service.CorrectionLog
}

// Engine categorizes transactions. It is safe for concurrent use.
type Engine struct {
	store       service.CategoryStore
	oracle      Oracle
	mappings    service.MappingStore
	corrections service.CorrectionLog
	rules       *pattern.Index
	merchants   *merchant.Cache
	now         func() time.Time
	income      []config.FallbackBand
	expense     []config.FallbackBand
	policy      config.Policy
}

// New builds a ready-to-use engine: rules are loaded from the category store,
// the merchant cache is seeded from the policy and then overlaid with any
// persisted mappings.
func New(ctx context.Context, deps Deps, policy config.Policy) (*Engine, error) {
	if deps.Rules == nil {
		return nil, fmt.Errorf("%w: category store is required", common.ErrMissingConfig)
	}
	if err := policy.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrInvalidConfig, err)
	}

	e := &Engine{
		store:       deps.Rules,
		oracle:      deps.Oracle,
		mappings:    deps.Mappings,
		corrections: deps.Corrections,
		rules:       pattern.NewIndex(),
		merchants:   merchant.NewCache(),
		now:         time.Now,
		income:      policy.BandsFor(config.DirectionIncome),
		expense:     policy.BandsFor(config.DirectionExpense),
		policy:      policy,
	}

	if _, err := e.RefreshRules(ctx); err != nil {
		return nil, err
	}

	seeds := make([]merchant.SeedEntry, 0, len(policy.SeedMerchants))
	for _, s := range policy.SeedMerchants {
		seeds = append(seeds, merchant.SeedEntry{Merchant: s.Merchant, CategoryID: s.CategoryID})
	}
	seeded := e.merchants.Seed(seeds)

	restored := 0
	if e.mappings != nil {
		persisted, err := e.mappings.GetMerchantMappings(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load merchant mappings: %w", err)
		}
		restored = e.merchants.Restore(persisted)
	}

	slog.Info("Categorization engine ready",
		"rules", e.rules.Len(),
		"seeded_merchants", seeded,
		"restored_merchants", restored,
		"oracle", e.oracle != nil)

	return e, nil
}

// RefreshRules reloads the rule index from the category store. The new set
// replaces the old one atomically; on error the old set stays in place.
func (e *Engine) RefreshRules(ctx context.Context) (pattern.LoadReport, error) {
	rules, err := e.store.GetCategoryRules(ctx)
	if err != nil {
		return pattern.LoadReport{}, fmt.Errorf("failed to load category rules: %w", err)
	}

	report := e.rules.Load(rules)
	if len(report.Skipped) > 0 {
		slog.Warn("Some rules were skipped", "skipped", len(report.Skipped), "loaded", report.Loaded)
	}
	return report, nil
}

// Categorize resolves a single transaction. The only error is
// common.ErrInvalidTransaction; oracle failures fall through to the amount
// heuristic.
func (e *Engine) Categorize(ctx context.Context, txn model.Transaction) (model.CategoryMatch, error) {
	if err := validateTransaction(txn); err != nil {
		return model.CategoryMatch{}, err
	}

	if match, ok := e.resolveLocal(txn); ok {
		return match, nil
	}

	if match, ok := e.consultOracle(ctx, txn); ok {
		return match, nil
	}

	return fallbackMatch(e.income, e.expense, txn.Amount.Decimal), nil
}

// resolveLocal runs the tiers that need no I/O: merchant cache, then rules.
func (e *Engine) resolveLocal(txn model.Transaction) (model.CategoryMatch, bool) {
	key := txn.MerchantKey()
	if key != "" {
		if categoryID, ok := e.merchants.Get(key); ok {
			return model.CategoryMatch{
				CategoryID: categoryID,
				Confidence: e.policy.ExactConfidence,
				Method:     model.MethodExact,
			}, true
		}
	}

	description := strings.ToLower(strings.TrimSpace(txn.Description))
	if rule, ok := e.rules.MatchFirst(description, key); ok {
		return model.CategoryMatch{
			CategoryID: rule.CategoryID,
			Confidence: e.policy.PatternConfidence,
			Method:     model.MethodPattern,
			Rule:       rule.Pattern,
		}, true
	}

	return model.CategoryMatch{}, false
}

func (e *Engine) consultOracle(ctx context.Context, txn model.Transaction) (model.CategoryMatch, bool) {
	if e.oracle == nil || ctx.Err() != nil {
		return model.CategoryMatch{}, false
	}

	query := txn.OracleQuery()
	if query == "" {
		return model.CategoryMatch{}, false
	}

	octx, cancel := context.WithTimeout(ctx, e.policy.OracleTimeout)
	defer cancel()

	suggestion, err := e.oracle.SuggestCategory(octx, query)
	if err != nil {
		slog.Warn("Oracle gave no usable answer",
			"transaction_id", txn.ID,
			"error", err)
		return model.CategoryMatch{}, false
	}

	if suggestion.CategoryID == "" || suggestion.Confidence > 1 ||
		!(suggestion.Confidence >= e.policy.OracleThreshold) {
		slog.Debug("Oracle suggestion rejected",
			"transaction_id", txn.ID,
			"category", suggestion.CategoryID,
			"confidence", suggestion.Confidence,
			"threshold", e.policy.OracleThreshold)
		return model.CategoryMatch{}, false
	}

	return model.CategoryMatch{
		CategoryID: suggestion.CategoryID,
		Confidence: suggestion.Confidence,
		Method:     model.MethodOracle,
	}, true
}

func validateTransaction(txn model.Transaction) error {
	if !txn.HasAmount() {
		return fmt.Errorf("%w: transaction %q has no amount", common.ErrInvalidTransaction, txn.ID)
	}
	return nil
}

// Policy returns the policy the engine was built with.
func (e *Engine) Policy() config.Policy {
	return e.policy
}

// Rules returns the loaded rules in evaluation order.
func (e *Engine) Rules() []model.Rule {
	return e.rules.Rules()
}

// Merchants returns a snapshot of the merchant cache.
func (e *Engine) Merchants() []model.MerchantMapping {
	return e.merchants.Snapshot()
}
