package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Veraticus/spice-categorizer/internal/common"
	"github.com/Veraticus/spice-categorizer/internal/model"
	"github.com/google/uuid"
)

// LearnOutcome reports the effect of a correction.
type LearnOutcome struct {
	MerchantKey string `json:"merchant_key,omitempty"`
	Updated     bool   `json:"updated"`
}

// LearnFromCorrection records that txn belongs to categoryID. When the
// transaction names a merchant, the merchant mapping is created or overwritten
// so future transactions from it resolve through the exact tier. Mappings are
// never removed. Repeating a correction leaves the cache unchanged.
func (e *Engine) LearnFromCorrection(ctx context.Context, txn model.Transaction, categoryID string) (LearnOutcome, error) {
	categoryID = strings.TrimSpace(categoryID)
	if categoryID == "" {
		return LearnOutcome{}, fmt.Errorf("%w: category is required", common.ErrInvalidCorrection)
	}

	previous, hadPrevious := e.resolveLocal(txn)

	outcome := LearnOutcome{MerchantKey: txn.MerchantKey()}
	if outcome.MerchantKey != "" {
		updated, err := e.storeMapping(ctx, outcome.MerchantKey, categoryID, model.SourceLearned)
		if err != nil {
			return outcome, err
		}
		outcome.Updated = updated
	}

	if e.corrections != nil {
		correction := &model.Correction{
			ID:            uuid.NewString(),
			TransactionID: txn.ID,
			MerchantKey:   outcome.MerchantKey,
			Description:   txn.Description,
			Amount:        txn.Amount,
			CategoryID:    categoryID,
			CreatedAt:     e.now(),
		}
		if hadPrevious {
			correction.PreviousCategoryID = previous.CategoryID
			correction.PreviousMethod = previous.Method
		}
		if err := e.corrections.SaveCorrection(ctx, correction); err != nil {
			return outcome, fmt.Errorf("failed to record correction: %w", err)
		}
	}

	slog.Info("Learned from correction",
		"transaction_id", txn.ID,
		"merchant", outcome.MerchantKey,
		"category", categoryID,
		"updated", outcome.Updated)

	return outcome, nil
}

// SetMerchant maps merchant to categoryID as a manual override. Unlike a
// correction it records nothing in the correction log.
func (e *Engine) SetMerchant(ctx context.Context, merchant, categoryID string) (LearnOutcome, error) {
	outcome := LearnOutcome{MerchantKey: model.NormalizeMerchant(merchant)}
	categoryID = strings.TrimSpace(categoryID)
	if outcome.MerchantKey == "" || categoryID == "" {
		return outcome, fmt.Errorf("%w: merchant and category are required", common.ErrInvalidCorrection)
	}

	updated, err := e.storeMapping(ctx, outcome.MerchantKey, categoryID, model.SourceManual)
	outcome.Updated = updated
	return outcome, err
}

// storeMapping persists the mapping before caching it, so a failed save leaves
// the cache untouched and a retry writes again.
func (e *Engine) storeMapping(ctx context.Context, key, categoryID string, source model.MappingSource) (bool, error) {
	existing, ok := e.merchants.Lookup(key)
	if ok && existing.CategoryID == categoryID {
		return false, nil
	}

	mapping := model.MerchantMapping{
		MerchantKey: key,
		CategoryID:  categoryID,
		Source:      source,
		UseCount:    existing.UseCount,
		LastUpdated: e.now(),
	}
	if e.mappings != nil {
		if err := e.mappings.SaveMerchantMapping(ctx, &mapping); err != nil {
			return false, fmt.Errorf("failed to persist merchant mapping: %w", err)
		}
	}
	return e.merchants.Set(key, categoryID, source), nil
}
