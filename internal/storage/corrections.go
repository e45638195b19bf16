package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Veraticus/spice-categorizer/internal/model"
	"github.com/shopspring/decimal"
)

// SaveCorrection appends a correction to the log.
func (s *SQLiteStorage) SaveCorrection(ctx context.Context, correction *model.Correction) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateCorrection(correction); err != nil {
		return err
	}
	if correction.CreatedAt.IsZero() {
		correction.CreatedAt = time.Now().UTC()
	}

	var amount sql.NullString
	if correction.Amount.Valid {
		amount = sql.NullString{String: correction.Amount.Decimal.String(), Valid: true}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO corrections (
			id, transaction_id, merchant_key, description, amount,
			category_id, previous_category_id, previous_method, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		correction.ID, correction.TransactionID, correction.MerchantKey, correction.Description, amount,
		correction.CategoryID, correction.PreviousCategoryID, string(correction.PreviousMethod), correction.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save correction: %w", err)
	}
	return nil
}

// GetCorrections returns up to limit corrections, newest first.
func (s *SQLiteStorage) GetCorrections(ctx context.Context, limit int) ([]model.Correction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if limit <= 0 {
		return nil, ErrInvalidLimit
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, transaction_id, merchant_key, description, amount,
			category_id, previous_category_id, previous_method, created_at
		FROM corrections
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query corrections: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var corrections []model.Correction
	for rows.Next() {
		var (
			c      model.Correction
			amount sql.NullString
			method string
		)
		if err := rows.Scan(&c.ID, &c.TransactionID, &c.MerchantKey, &c.Description, &amount,
			&c.CategoryID, &c.PreviousCategoryID, &method, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan correction: %w", err)
		}
		c.PreviousMethod = model.Method(method)
		if amount.Valid {
			d, err := decimal.NewFromString(amount.String)
			if err != nil {
				return nil, fmt.Errorf("correction %s has invalid amount %q: %w", c.ID, amount.String, err)
			}
			c.Amount = model.NewAmount(d)
		}
		corrections = append(corrections, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating corrections: %w", err)
	}

	return corrections, nil
}
