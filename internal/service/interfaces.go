// Package service defines the contracts between the engine and its collaborators.
package service

import (
	"context"
	"time"

	"github.com/Veraticus/spice-categorizer/internal/model"
)

// CategoryStore is the read side of the external category store the engine consumes.
type CategoryStore interface {
	// GetCategoryRules returns active rules in registration order.
	GetCategoryRules(ctx context.Context) ([]model.Rule, error)
	GetCategories(ctx context.Context) ([]model.Category, error)
}

// MappingStore persists merchant mappings so learned corrections survive restarts.
type MappingStore interface {
	GetMerchantMappings(ctx context.Context) ([]model.MerchantMapping, error)
	SaveMerchantMapping(ctx context.Context, mapping *model.MerchantMapping) error
}

// CorrectionLog records corrections for later rule and oracle improvement.
type CorrectionLog interface {
	SaveCorrection(ctx context.Context, correction *model.Correction) error
}

// Storage defines the contract for our persistence layer.
type Storage interface {
	CategoryStore
	MappingStore
	CorrectionLog

	// Category operations
	GetCategory(ctx context.Context, id string) (*model.Category, error)
	CreateCategory(ctx context.Context, category *model.Category) error
	DeleteCategory(ctx context.Context, id string) error

	// Rule operations
	CreateRule(ctx context.Context, rule *model.Rule) error
	DeleteRule(ctx context.Context, id string) error

	// Correction history
	GetCorrections(ctx context.Context, limit int) ([]model.Correction, error)

	// Database management
	Migrate(ctx context.Context) error
	Close() error
}

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}
