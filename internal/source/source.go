// Package source reads transactions from exported statement files.
package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Veraticus/spice-categorizer/internal/model"
	"github.com/shopspring/decimal"
)

// ErrUnsupportedFormat is returned for files whose extension has no reader.
var ErrUnsupportedFormat = errors.New("unsupported transaction file format")

// Reader parses transactions from a stream.
type Reader interface {
	Read(ctx context.Context, r io.Reader) ([]model.Transaction, error)
}

// ForPath picks a Reader from the file extension.
func ForPath(path string) (Reader, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return NewJSONReader(), nil
	case ".csv":
		return NewCSVReader(), nil
	case ".ofx", ".qfx":
		return NewOFXReader(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// Open reads every transaction in the file at path.
func Open(ctx context.Context, path string) ([]model.Transaction, error) {
	reader, err := ForPath(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path) //nolint:gosec // user-supplied statement file
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	txns, err := reader.Read(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return txns, nil
}

var dateLayouts = []string{
	time.DateOnly,
	time.RFC3339,
	"01/02/2006",
	"1/2/2006",
}

// ParseDate accepts the common export date layouts. Blank dates are allowed.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

// parseAmount reads a signed amount such as "-1,234.50" or "$12". A blank
// value yields an invalid NullDecimal.
func parseAmount(s string) (decimal.NullDecimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.NullDecimal{}, nil
	}
	s = strings.NewReplacer(",", "", "$", "").Replace(s)
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.NullDecimal{}, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return model.NewAmount(d), nil
}
