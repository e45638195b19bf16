// Package testutil provides shared test fixtures backed by a real SQLite store.
package testutil

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/Veraticus/spice-categorizer/internal/model"
	"github.com/Veraticus/spice-categorizer/internal/storage"
)

// TestDB is a migrated SQLite database that is closed when the test ends.
type TestDB struct {
	Storage *storage.SQLiteStorage
	t       *testing.T
}

// Option customizes a TestDB before the test body runs.
type Option func(context.Context, *TestDB) error

// WithCategories creates extra categories.
func WithCategories(categories ...model.Category) Option {
	return func(ctx context.Context, db *TestDB) error {
		for i := range categories {
			if err := db.Storage.CreateCategory(ctx, &categories[i]); err != nil {
				return err
			}
		}
		return nil
	}
}

// WithRules appends rules after the default ones.
func WithRules(rules ...model.Rule) Option {
	return func(ctx context.Context, db *TestDB) error {
		for i := range rules {
			if err := db.Storage.CreateRule(ctx, &rules[i]); err != nil {
				return err
			}
		}
		return nil
	}
}

// WithMappings persists merchant mappings.
func WithMappings(mappings ...model.MerchantMapping) Option {
	return func(ctx context.Context, db *TestDB) error {
		for i := range mappings {
			if err := db.Storage.SaveMerchantMapping(ctx, &mappings[i]); err != nil {
				return err
			}
		}
		return nil
	}
}

// SetupTestDB creates a file-backed database in t.TempDir, migrates it, and
// applies opts in order.
//
// Example:
//
//	db := testutil.SetupTestDB(t,
//		testutil.WithCategories(model.Category{ID: "pets", Type: model.CategoryTypeExpense}),
//		testutil.WithRules(model.Rule{Pattern: `petco`, CategoryID: "pets"}),
//	)
func SetupTestDB(t *testing.T, opts ...Option) *TestDB {
	t.Helper()

	store, err := storage.NewSQLiteStorage(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})

	ctx := context.Background()
	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	db := &TestDB{Storage: store, t: t}
	for _, opt := range opts {
		if err := opt(ctx, db); err != nil {
			t.Fatalf("test database setup failed: %v", err)
		}
	}
	return db
}

// MustGetCategory returns the category with the given id or fails the test.
func (db *TestDB) MustGetCategory(id string) model.Category {
	db.t.Helper()
	cat, err := db.Storage.GetCategory(context.Background(), id)
	if err != nil {
		db.t.Fatalf("category %q not found: %v", id, err)
	}
	return *cat
}

// CategoryIDs returns the ids of every active category.
func (db *TestDB) CategoryIDs() []string {
	db.t.Helper()
	cats, err := db.Storage.GetCategories(context.Background())
	if err != nil {
		db.t.Fatalf("failed to list categories: %v", err)
	}
	ids := make([]string, len(cats))
	for i, c := range cats {
		ids[i] = c.ID
	}
	return ids
}
