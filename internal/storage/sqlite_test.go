package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Helper function to create test storage.
func createTestStorage(t *testing.T) *SQLiteStorage {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")

	store, err := NewSQLiteStorage(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	require.NoError(t, store.Migrate(context.Background()))
	return store
}

func TestNewSQLiteStorage(t *testing.T) {
	tests := []struct {
		name    string
		path    func(t *testing.T) string
		wantErr bool
	}{
		{
			name: "file in new directory",
			path: func(t *testing.T) string {
				t.Helper()
				return filepath.Join(t.TempDir(), "nested", "dir", "categorize.db")
			},
		},
		{
			name: "in memory",
			path: func(*testing.T) string { return ":memory:" },
		},
		{
			name:    "empty path",
			path:    func(*testing.T) string { return "  " },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, err := NewSQLiteStorage(tt.path(t))
			if tt.wantErr {
				require.ErrorIs(t, err, ErrEmptyString)
				return
			}
			require.NoError(t, err)
			defer func() { _ = store.Close() }()
			require.NoError(t, store.Migrate(context.Background()))
		})
	}
}

func TestMigrate_Idempotent(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	require.NoError(t, store.Migrate(ctx))

	version, err := store.SchemaVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, ExpectedSchemaVersion, version)

	// Seeding must not run twice.
	rules, err := store.GetCategoryRules(ctx)
	require.NoError(t, err)
	assert.Len(t, rules, len(defaultRules))
}

func TestMigrate_SeedsDefaults(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	categories, err := store.GetCategories(ctx)
	require.NoError(t, err)
	assert.Len(t, categories, len(DefaultCategories()))

	ids := make(map[string]bool, len(categories))
	for _, c := range categories {
		ids[c.ID] = true
		assert.True(t, c.IsActive)
		assert.False(t, c.CreatedAt.IsZero())
	}
	for _, id := range []string{"income-salary", "income-other", "housing", "shopping", "other", "transfer"} {
		assert.True(t, ids[id], "missing default category %s", id)
	}

	rules, err := store.GetCategoryRules(ctx)
	require.NoError(t, err)
	require.Len(t, rules, len(defaultRules))
	for i, r := range rules {
		assert.Equal(t, defaultRules[i].pattern, r.Pattern)
		assert.Equal(t, defaultRules[i].categoryID, r.CategoryID)
		assert.Equal(t, i+1, r.Position)
		assert.True(t, ids[r.CategoryID], "rule targets unknown category %s", r.CategoryID)
	}
}

func TestValidateContext(t *testing.T) {
	store := createTestStorage(t)

	//nolint:staticcheck // nil context is the case under test
	_, err := store.GetCategories(nil)
	require.ErrorIs(t, err, ErrNilContext)

	//nolint:staticcheck // nil context is the case under test
	err = store.Migrate(nil)
	require.ErrorIs(t, err, ErrNilContext)
}
