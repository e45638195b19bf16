package storage

import (
	"context"
	"testing"

	"github.com/Veraticus/spice-categorizer/internal/common"
	"github.com/Veraticus/spice-categorizer/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateCategory(t *testing.T) {
	tests := []struct {
		category *model.Category
		wantErr  error
		name     string
	}{
		{
			name:     "new expense category",
			category: &model.Category{ID: "pets", Name: "Pets", Type: model.CategoryTypeExpense},
		},
		{
			name:     "name defaults to id",
			category: &model.Category{ID: "gifts", Type: model.CategoryTypeExpense},
		},
		{
			name:     "duplicate",
			category: &model.Category{ID: "shopping", Name: "Shopping", Type: model.CategoryTypeExpense},
			wantErr:  common.ErrDuplicateEntry,
		},
		{
			name:     "missing id",
			category: &model.Category{Name: "Nameless", Type: model.CategoryTypeExpense},
			wantErr:  ErrEmptyString,
		},
		{
			name:     "nil",
			category: nil,
			wantErr:  ErrNilParameter,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := createTestStorage(t)
			ctx := context.Background()

			err := store.CreateCategory(ctx, tt.category)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)

			got, err := store.GetCategory(ctx, tt.category.ID)
			require.NoError(t, err)
			assert.Equal(t, tt.category.ID, got.ID)
			assert.NotEmpty(t, got.Name)
			assert.True(t, got.IsActive)
		})
	}
}

func TestCreateCategory_InvalidType(t *testing.T) {
	store := createTestStorage(t)
	err := store.CreateCategory(context.Background(), &model.Category{ID: "x", Type: "bogus"})
	require.Error(t, err)
}

func TestGetCategory_NotFound(t *testing.T) {
	store := createTestStorage(t)
	_, err := store.GetCategory(context.Background(), "does-not-exist")
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestDeleteCategory(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	before, err := store.GetCategoryRules(ctx)
	require.NoError(t, err)

	require.NoError(t, store.DeleteCategory(ctx, "transfer"))

	categories, err := store.GetCategories(ctx)
	require.NoError(t, err)
	for _, c := range categories {
		assert.NotEqual(t, "transfer", c.ID)
	}

	// Soft delete keeps the row.
	got, err := store.GetCategory(ctx, "transfer")
	require.NoError(t, err)
	assert.False(t, got.IsActive)

	rules, err := store.GetCategoryRules(ctx)
	require.NoError(t, err)
	assert.Less(t, len(rules), len(before))
	for _, r := range rules {
		assert.NotEqual(t, "transfer", r.CategoryID)
	}

	require.ErrorIs(t, store.DeleteCategory(ctx, "transfer"), common.ErrNotFound)
}

func TestCreateCategory_Reactivates(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	require.NoError(t, store.DeleteCategory(ctx, "dining"))
	require.NoError(t, store.CreateCategory(ctx, &model.Category{
		ID:   "dining",
		Name: "Eating Out",
		Type: model.CategoryTypeExpense,
	}))

	got, err := store.GetCategory(ctx, "dining")
	require.NoError(t, err)
	assert.True(t, got.IsActive)
	assert.Equal(t, "Eating Out", got.Name)
}

func TestSeedDefaultCategories(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	added, err := store.SeedDefaultCategories(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, added, "migration already seeded defaults")

	_, err = store.db.ExecContext(ctx, `DELETE FROM categories WHERE id = 'dining'`)
	require.NoError(t, err)
	require.NoError(t, store.DeleteCategory(ctx, "entertainment"))

	added, err = store.SeedDefaultCategories(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, added)

	dining, err := store.GetCategory(ctx, "dining")
	require.NoError(t, err)
	assert.True(t, dining.IsActive)

	entertainment, err := store.GetCategory(ctx, "entertainment")
	require.NoError(t, err)
	assert.False(t, entertainment.IsActive)

	_, err = store.SeedDefaultCategories(nil) //nolint:staticcheck // testing nil context
	assert.ErrorIs(t, err, ErrNilContext)
}
