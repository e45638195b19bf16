// Package storage provides the SQLite-backed category store, merchant mapping
// store, and correction log.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/spice-categorizer/internal/model"
)

// Validation errors.
var (
	ErrNilContext     = errors.New("context cannot be nil")
	ErrEmptyString    = errors.New("string parameter cannot be empty")
	ErrNilParameter   = errors.New("parameter cannot be nil")
	ErrInvalidLimit   = errors.New("limit must be positive")
	ErrInvalidMapping = errors.New("invalid merchant mapping")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

func validateCategory(category *model.Category) error {
	if category == nil {
		return fmt.Errorf("%w: category", ErrNilParameter)
	}
	if err := validateString(category.ID, "category id"); err != nil {
		return err
	}
	switch category.Type {
	case model.CategoryTypeIncome, model.CategoryTypeExpense, model.CategoryTypeSystem:
	default:
		return fmt.Errorf("invalid category type %q", category.Type)
	}
	return nil
}

func validateMapping(mapping *model.MerchantMapping) error {
	if mapping == nil {
		return fmt.Errorf("%w: mapping", ErrNilParameter)
	}
	if model.NormalizeMerchant(mapping.MerchantKey) == "" {
		return fmt.Errorf("%w: missing merchant key", ErrInvalidMapping)
	}
	if strings.TrimSpace(mapping.CategoryID) == "" {
		return fmt.Errorf("%w: missing category", ErrInvalidMapping)
	}
	switch mapping.Source {
	case model.SourceSeed, model.SourceLearned, model.SourceManual:
	default:
		return fmt.Errorf("%w: unknown source %q", ErrInvalidMapping, mapping.Source)
	}
	return nil
}

func validateCorrection(correction *model.Correction) error {
	if correction == nil {
		return fmt.Errorf("%w: correction", ErrNilParameter)
	}
	if err := validateString(correction.ID, "correction id"); err != nil {
		return err
	}
	return validateString(correction.CategoryID, "correction category")
}
