package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/Veraticus/spice-categorizer/internal/common"
	"github.com/google/uuid"
)

// ExpectedSchemaVersion is the latest schema version that the application expects.
const ExpectedSchemaVersion = 2

// Migration represents a database schema migration.
type Migration struct {
	Up          func(*sql.Tx) error
	Description string
	Version     int
}

var migrations = []Migration{
	{
		Version:     1,
		Description: "Initial schema",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS categories (
					id TEXT PRIMARY KEY,
					name TEXT NOT NULL,
					description TEXT NOT NULL DEFAULT '',
					type TEXT NOT NULL DEFAULT 'expense' CHECK (type IN ('income', 'expense', 'system')),
					is_active BOOLEAN NOT NULL DEFAULT 1,
					created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
				)`,

				`CREATE TABLE IF NOT EXISTS category_rules (
					id TEXT PRIMARY KEY,
					pattern TEXT NOT NULL,
					category_id TEXT NOT NULL REFERENCES categories(id),
					position INTEGER NOT NULL,
					is_active BOOLEAN NOT NULL DEFAULT 1,
					created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE INDEX idx_category_rules_position ON category_rules(position)`,

				`CREATE TABLE IF NOT EXISTS merchant_mappings (
					merchant_key TEXT PRIMARY KEY,
					category_id TEXT NOT NULL,
					source TEXT NOT NULL CHECK (source IN ('SEED', 'LEARNED', 'MANUAL')),
					use_count INTEGER NOT NULL DEFAULT 0,
					last_updated DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
				)`,

				`CREATE TABLE IF NOT EXISTS corrections (
					id TEXT PRIMARY KEY,
					transaction_id TEXT NOT NULL DEFAULT '',
					merchant_key TEXT NOT NULL DEFAULT '',
					description TEXT NOT NULL DEFAULT '',
					amount TEXT,
					category_id TEXT NOT NULL,
					previous_category_id TEXT NOT NULL DEFAULT '',
					previous_method TEXT NOT NULL DEFAULT '',
					created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE INDEX idx_corrections_created ON corrections(created_at)`,
				`CREATE INDEX idx_corrections_merchant ON corrections(merchant_key)`,
			}

			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query: %w", err)
				}
			}
			return nil
		},
	},
	{
		Version:     2,
		Description: "Default categories and starter rules",
		Up: func(tx *sql.Tx) error {
			if _, err := seedCategories(context.Background(), tx); err != nil {
				return err
			}
			for i, rule := range defaultRules {
				if _, err := tx.Exec(
					`INSERT INTO category_rules (id, pattern, category_id, position) VALUES (?, ?, ?, ?)`,
					uuid.NewString(), rule.pattern, rule.categoryID, i+1,
				); err != nil {
					return fmt.Errorf("failed to seed rule %q: %w", rule.pattern, err)
				}
			}
			return nil
		},
	},
}

// Migrate brings the schema up to ExpectedSchemaVersion.
func (s *SQLiteStorage) Migrate(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	currentVersion, err := s.SchemaVersion(ctx)
	if err != nil {
		return err
	}

	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		tx, txErr := s.db.BeginTx(ctx, nil)
		if txErr != nil {
			return fmt.Errorf("failed to begin transaction: %w", txErr)
		}

		if upErr := migration.Up(tx); upErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d failed: %w", migration.Version, upErr)
		}

		if _, execErr := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", migration.Version)); execErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to update schema version: %w", execErr)
		}

		if commitErr := tx.Commit(); commitErr != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, commitErr)
		}

		slog.Info("Applied migration",
			"version", migration.Version,
			"description", migration.Description)
	}

	finalVersion, err := s.SchemaVersion(ctx)
	if err != nil {
		return err
	}
	if finalVersion != ExpectedSchemaVersion {
		return fmt.Errorf("%w: schema version %d, expected %d",
			common.ErrDatabaseCorrupted, finalVersion, ExpectedSchemaVersion)
	}

	return nil
}

// SchemaVersion returns the database's user_version.
func (s *SQLiteStorage) SchemaVersion(ctx context.Context) (int, error) {
	var version int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to get schema version: %w", err)
	}
	return version, nil
}
