package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/Veraticus/spice-categorizer/internal/model"
	"github.com/shopspring/decimal"
)

// Record is the JSON shape of a transaction, shared by JSON files and the
// HTTP API. Amounts may be numbers or strings; absent or null amounts stay
// invalid.
type Record struct {
	ID          string              `json:"id,omitempty"`
	Date        string              `json:"date,omitempty"`
	Description string              `json:"description,omitempty"`
	Merchant    string              `json:"merchant,omitempty"`
	Currency    string              `json:"currency,omitempty"`
	AccountID   string              `json:"account,omitempty"`
	Amount      decimal.NullDecimal `json:"amount"`
}

// Transaction converts the record to the model.
func (r Record) Transaction() (model.Transaction, error) {
	date, err := ParseDate(r.Date)
	if err != nil {
		return model.Transaction{}, err
	}
	return model.Transaction{
		ID:           r.ID,
		Date:         date,
		Description:  r.Description,
		MerchantName: r.Merchant,
		Currency:     r.Currency,
		AccountID:    r.AccountID,
		Amount:       r.Amount,
	}, nil
}

// JSONReader reads a JSON array of Records.
type JSONReader struct{}

// NewJSONReader creates a JSON reader.
func NewJSONReader() *JSONReader {
	return &JSONReader{}
}

// Read implements Reader.
func (r *JSONReader) Read(ctx context.Context, in io.Reader) ([]model.Transaction, error) {
	var records []Record
	if err := json.NewDecoder(in).Decode(&records); err != nil {
		return nil, fmt.Errorf("failed to decode transactions: %w", err)
	}

	txns := make([]model.Transaction, 0, len(records))
	for i, rec := range records {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		txn, err := rec.Transaction()
		if err != nil {
			return nil, fmt.Errorf("transaction %d: %w", i, err)
		}
		txns = append(txns, txn)
	}
	return txns, nil
}
