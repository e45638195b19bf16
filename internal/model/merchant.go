package model

import "time"

// MappingSource indicates how a merchant mapping was created.
type MappingSource string

const (
	// SourceSeed indicates the mapping came from the shipped starter list.
	SourceSeed MappingSource = "SEED"
	// SourceLearned indicates the mapping was learned from a user correction.
	SourceLearned MappingSource = "LEARNED"
	// SourceManual indicates the mapping was set explicitly by an operator.
	SourceManual MappingSource = "MANUAL"
)

// MerchantMapping is a confirmed association between a normalized merchant and a category.
type MerchantMapping struct {
	LastUpdated time.Time     `json:"last_updated"`
	MerchantKey string        `json:"merchant_key"`
	CategoryID  string        `json:"category_id"`
	Source      MappingSource `json:"source"`
	UseCount    int           `json:"use_count"`
}
