package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/Veraticus/spice-categorizer/internal/common"
	"github.com/Veraticus/spice-categorizer/internal/model"
	"github.com/Veraticus/spice-categorizer/internal/pattern"
	"github.com/google/uuid"
)

// GetCategoryRules returns active rules whose category is also active,
// in registration order.
func (s *SQLiteStorage) GetCategoryRules(ctx context.Context) ([]model.Rule, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT r.id, r.pattern, r.category_id, r.position, r.is_active, r.created_at
		FROM category_rules r
		JOIN categories c ON c.id = r.category_id
		WHERE r.is_active = 1 AND c.is_active = 1
		ORDER BY r.position, r.created_at
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query rules: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var rules []model.Rule
	for rows.Next() {
		var rule model.Rule
		if err := rows.Scan(&rule.ID, &rule.Pattern, &rule.CategoryID, &rule.Position, &rule.IsActive, &rule.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan rule: %w", err)
		}
		rules = append(rules, rule)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rules: %w", err)
	}

	return rules, nil
}

// CreateRule appends a rule after every existing rule. The pattern must
// compile and the category must exist and be active.
func (s *SQLiteStorage) CreateRule(ctx context.Context, rule *model.Rule) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if rule == nil {
		return fmt.Errorf("%w: rule", ErrNilParameter)
	}
	if err := pattern.ValidateRule(*rule); err != nil {
		return err
	}

	cat, err := s.GetCategory(ctx, rule.CategoryID)
	if err != nil {
		return fmt.Errorf("rule category: %w", err)
	}
	if !cat.IsActive {
		return fmt.Errorf("rule category %s: %w", rule.CategoryID, common.ErrNotFound)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var position int
	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(position), 0) + 1 FROM category_rules`).Scan(&position); err != nil {
		return fmt.Errorf("failed to determine rule position: %w", err)
	}

	if rule.ID == "" {
		rule.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO category_rules (id, pattern, category_id, position, is_active, created_at)
		VALUES (?, ?, ?, ?, 1, ?)
	`, rule.ID, rule.Pattern, rule.CategoryID, position, now); err != nil {
		return fmt.Errorf("failed to create rule: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit rule: %w", err)
	}

	rule.Position = position
	rule.IsActive = true
	rule.CreatedAt = now
	return nil
}

// DeleteRule deactivates a rule.
func (s *SQLiteStorage) DeleteRule(ctx context.Context, id string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `UPDATE category_rules SET is_active = 0 WHERE id = ? AND is_active = 1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete rule: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("rule %s: %w", id, common.ErrNotFound)
	}
	return nil
}
