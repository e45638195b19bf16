package source

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/Veraticus/spice-categorizer/internal/model"
)

// ErrMissingColumn is returned when a CSV header lacks a required column.
var ErrMissingColumn = errors.New("missing required column")

// CSVReader reads a CSV file with a header row. Recognized columns are
// id, date, description, merchant, amount, currency and account, in any order.
type CSVReader struct{}

// NewCSVReader creates a CSV reader.
func NewCSVReader() *CSVReader {
	return &CSVReader{}
}

// Read implements Reader.
func (r *CSVReader) Read(ctx context.Context, in io.Reader) ([]model.Transaction, error) {
	csvr := csv.NewReader(bufio.NewReader(in))
	csvr.TrimLeadingSpace = true
	csvr.FieldsPerRecord = -1

	header, err := csvr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	if _, ok := cols["amount"]; !ok {
		return nil, fmt.Errorf("%w: amount", ErrMissingColumn)
	}
	_, hasDesc := cols["description"]
	_, hasMerchant := cols["merchant"]
	if !hasDesc && !hasMerchant {
		return nil, fmt.Errorf("%w: description or merchant", ErrMissingColumn)
	}

	field := func(rec []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	var txns []model.Transaction
	line := 1
	for {
		line++
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rec, err := csvr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		amount, err := parseAmount(field(rec, "amount"))
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		date, err := ParseDate(field(rec, "date"))
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		txns = append(txns, model.Transaction{
			ID:           field(rec, "id"),
			Date:         date,
			Description:  field(rec, "description"),
			MerchantName: field(rec, "merchant"),
			Currency:     field(rec, "currency"),
			AccountID:    field(rec, "account"),
			Amount:       amount,
		})
	}
	return txns, nil
}
