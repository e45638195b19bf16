package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/Veraticus/spice-categorizer/internal/model"
)

// GetMerchantMappings returns every persisted merchant mapping ordered by key.
func (s *SQLiteStorage) GetMerchantMappings(ctx context.Context) ([]model.MerchantMapping, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT merchant_key, category_id, source, use_count, last_updated
		FROM merchant_mappings
		ORDER BY merchant_key
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query merchant mappings: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var mappings []model.MerchantMapping
	for rows.Next() {
		var (
			m      model.MerchantMapping
			source string
		)
		if err := rows.Scan(&m.MerchantKey, &m.CategoryID, &source, &m.UseCount, &m.LastUpdated); err != nil {
			return nil, fmt.Errorf("failed to scan merchant mapping: %w", err)
		}
		m.Source = model.MappingSource(source)
		mappings = append(mappings, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating merchant mappings: %w", err)
	}

	return mappings, nil
}

// SaveMerchantMapping upserts a mapping keyed by its normalized merchant key
// and bumps its use count.
func (s *SQLiteStorage) SaveMerchantMapping(ctx context.Context, mapping *model.MerchantMapping) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateMapping(mapping); err != nil {
		return err
	}

	mapping.MerchantKey = model.NormalizeMerchant(mapping.MerchantKey)
	if mapping.LastUpdated.IsZero() {
		mapping.LastUpdated = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO merchant_mappings (merchant_key, category_id, source, use_count, last_updated)
		VALUES (?, ?, ?, 1, ?)
		ON CONFLICT(merchant_key) DO UPDATE SET
			category_id = excluded.category_id,
			source = excluded.source,
			use_count = merchant_mappings.use_count + 1,
			last_updated = excluded.last_updated
	`, mapping.MerchantKey, mapping.CategoryID, string(mapping.Source), mapping.LastUpdated)
	if err != nil {
		return fmt.Errorf("failed to save merchant mapping: %w", err)
	}
	return nil
}
