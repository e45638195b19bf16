package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Veraticus/spice-categorizer/internal/common"
	"github.com/Veraticus/spice-categorizer/internal/model"
)

// GetCategories returns all active categories ordered by name.
func (s *SQLiteStorage) GetCategories(ctx context.Context) ([]model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, description, type, is_active, created_at
		FROM categories
		WHERE is_active = 1
		ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var categories []model.Category
	for rows.Next() {
		cat, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		categories = append(categories, cat)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}

	return categories, nil
}

// GetCategory returns a category by id, including inactive ones.
func (s *SQLiteStorage) GetCategory(ctx context.Context, id string) (*model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, description, type, is_active, created_at
		FROM categories
		WHERE id = ?
	`, id)

	cat, err := scanCategory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("category %s: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &cat, nil
}

// CreateCategory inserts a new category. A previously deleted category with
// the same id is reactivated and updated instead.
func (s *SQLiteStorage) CreateCategory(ctx context.Context, category *model.Category) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateCategory(category); err != nil {
		return err
	}
	if strings.TrimSpace(category.Name) == "" {
		category.Name = category.ID
	}

	existing, err := s.GetCategory(ctx, category.ID)
	if err != nil && !errors.Is(err, common.ErrNotFound) {
		return err
	}
	if existing != nil && existing.IsActive {
		return fmt.Errorf("category %s: %w", category.ID, common.ErrDuplicateEntry)
	}

	now := time.Now().UTC()
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO categories (id, name, description, type, is_active, created_at)
		VALUES (?, ?, ?, ?, 1, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			description = excluded.description,
			type = excluded.type,
			is_active = 1
	`, category.ID, category.Name, category.Description, string(category.Type), now)
	if err != nil {
		return fmt.Errorf("failed to create category: %w", err)
	}

	category.IsActive = true
	if existing != nil {
		category.CreatedAt = existing.CreatedAt
	} else {
		category.CreatedAt = now
	}
	return nil
}

// DeleteCategory soft-deletes a category and deactivates its rules.
func (s *SQLiteStorage) DeleteCategory(ctx context.Context, id string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	result, err := tx.ExecContext(ctx, `UPDATE categories SET is_active = 0 WHERE id = ? AND is_active = 1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("category %s: %w", id, common.ErrNotFound)
	}

	if _, err := tx.ExecContext(ctx, `UPDATE category_rules SET is_active = 0 WHERE category_id = ?`, id); err != nil {
		return fmt.Errorf("failed to deactivate rules: %w", err)
	}

	return tx.Commit()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCategory(row rowScanner) (model.Category, error) {
	var (
		cat     model.Category
		catType string
	)
	if err := row.Scan(&cat.ID, &cat.Name, &cat.Description, &catType, &cat.IsActive, &cat.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return cat, err
		}
		return cat, fmt.Errorf("failed to scan category: %w", err)
	}
	cat.Type = model.CategoryType(catType)
	return cat, nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func seedCategories(ctx context.Context, db execer) (int, error) {
	inserted := 0
	for _, cat := range DefaultCategories() {
		result, err := db.ExecContext(ctx,
			`INSERT OR IGNORE INTO categories (id, name, description, type) VALUES (?, ?, ?, ?)`,
			cat.ID, cat.Name, cat.Description, string(cat.Type),
		)
		if err != nil {
			return inserted, fmt.Errorf("failed to seed category %s: %w", cat.ID, err)
		}
		n, err := result.RowsAffected()
		if err != nil {
			return inserted, fmt.Errorf("failed to check seeded category %s: %w", cat.ID, err)
		}
		inserted += int(n)
	}
	return inserted, nil
}

// SeedDefaultCategories inserts any default category that does not exist yet
// and returns how many were added. Soft-deleted defaults stay deleted.
func (s *SQLiteStorage) SeedDefaultCategories(ctx context.Context) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	return seedCategories(ctx, s.db)
}
