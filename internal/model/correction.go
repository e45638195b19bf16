package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Correction records a user-confirmed category for a transaction.
// Corrections are kept so rules and the oracle can be improved later.
type Correction struct {
	CreatedAt          time.Time
	ID                 string
	TransactionID      string
	MerchantKey        string
	Description        string
	CategoryID         string
	PreviousCategoryID string
	PreviousMethod     Method
	Amount             decimal.NullDecimal
}
