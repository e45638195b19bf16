package storage

import (
	"context"
	"testing"
	"time"

	"github.com/Veraticus/spice-categorizer/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCorrections(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	older := &model.Correction{
		ID:                 "c1",
		TransactionID:      "txn-1",
		MerchantKey:        "uber",
		Description:        "UBER TRIP",
		Amount:             model.NewAmount(decimal.RequireFromString("-23.45")),
		CategoryID:         "business-travel",
		PreviousCategoryID: "transportation",
		PreviousMethod:     model.MethodExact,
		CreatedAt:          base,
	}
	newer := &model.Correction{
		ID:          "c2",
		Description: "mystery charge",
		CategoryID:  "other",
		CreatedAt:   base.Add(time.Hour),
	}
	require.NoError(t, store.SaveCorrection(ctx, older))
	require.NoError(t, store.SaveCorrection(ctx, newer))

	got, err := store.GetCorrections(ctx, 10)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "c2", got[0].ID)
	assert.False(t, got[0].Amount.Valid)
	assert.Empty(t, got[0].PreviousMethod)

	first := got[1]
	assert.Equal(t, "c1", first.ID)
	assert.Equal(t, "txn-1", first.TransactionID)
	assert.Equal(t, "uber", first.MerchantKey)
	require.True(t, first.Amount.Valid)
	assert.True(t, first.Amount.Decimal.Equal(decimal.RequireFromString("-23.45")))
	assert.Equal(t, "transportation", first.PreviousCategoryID)
	assert.Equal(t, model.MethodExact, first.PreviousMethod)
	assert.True(t, first.CreatedAt.Equal(base))

	limited, err := store.GetCorrections(ctx, 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, "c2", limited[0].ID)
}

func TestCorrections_Invalid(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	require.ErrorIs(t, store.SaveCorrection(ctx, nil), ErrNilParameter)
	require.ErrorIs(t, store.SaveCorrection(ctx, &model.Correction{CategoryID: "x"}), ErrEmptyString)
	require.ErrorIs(t, store.SaveCorrection(ctx, &model.Correction{ID: "c"}), ErrEmptyString)

	_, err := store.GetCorrections(ctx, 0)
	require.ErrorIs(t, err, ErrInvalidLimit)
}
