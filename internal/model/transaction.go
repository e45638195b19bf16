// Package model defines the core data structures shared by the categorization engine.
package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Transaction represents a single raw financial transaction from any source.
// Amount follows the bank sign convention: negative is money out, positive is money in.
type Transaction struct {
	Date         time.Time
	ID           string
	Description  string // Raw free-text description
	MerchantName string // Cleaned merchant name, empty when unknown
	Currency     string
	AccountID    string
	Amount       decimal.NullDecimal
}

// HasAmount reports whether the transaction carries an amount.
func (t Transaction) HasAmount() bool {
	return t.Amount.Valid
}

// IsIncome reports whether money came in. Zero counts as an expense.
func (t Transaction) IsIncome() bool {
	return t.Amount.Valid && t.Amount.Decimal.IsPositive()
}

// MerchantKey returns the normalized merchant identity used for cache lookups.
func (t Transaction) MerchantKey() string {
	return NormalizeMerchant(t.MerchantName)
}

// OracleQuery builds the free-text query sent to the suggestion oracle:
// merchant first, then description, empty parts omitted.
func (t Transaction) OracleQuery() string {
	parts := make([]string, 0, 2)
	if m := strings.TrimSpace(t.MerchantName); m != "" {
		parts = append(parts, m)
	}
	if d := strings.TrimSpace(t.Description); d != "" {
		parts = append(parts, d)
	}
	return strings.Join(parts, " ")
}

// NewAmount is a convenience for building a present amount.
func NewAmount(d decimal.Decimal) decimal.NullDecimal {
	return decimal.NullDecimal{Decimal: d, Valid: true}
}

// NormalizeMerchant lowercases and trims a merchant name.
func NormalizeMerchant(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
