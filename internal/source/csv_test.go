package source

import (
	"context"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVReader_Read(t *testing.T) {
	input := strings.Join([]string{
		"Date,Description,Merchant,Amount,ID,Currency",
		`2025-03-01,UBER *TRIP,Uber,-23.45,t1,USD`,
		`03/02/2025,"PAYROLL, ACME",,"$2,500.00",t2,USD`,
		`2025-03-03,PENDING HOLD,,,t3,USD`,
		`2025-03-04,SHORT ROW`,
	}, "\n")

	txns, err := NewCSVReader().Read(context.Background(), strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, txns, 4)

	assert.Equal(t, "t1", txns[0].ID)
	assert.Equal(t, "Uber", txns[0].MerchantName)
	assert.True(t, txns[0].Amount.Decimal.Equal(decimal.RequireFromString("-23.45")))

	assert.Equal(t, "PAYROLL, ACME", txns[1].Description)
	assert.Empty(t, txns[1].MerchantName)
	assert.True(t, txns[1].Amount.Decimal.Equal(decimal.RequireFromString("2500")))
	assert.Equal(t, 2, txns[1].Date.Day())

	assert.False(t, txns[2].Amount.Valid)
	assert.False(t, txns[3].Amount.Valid)
	assert.Equal(t, "SHORT ROW", txns[3].Description)
}

func TestCSVReader_Errors(t *testing.T) {
	tests := []struct {
		wantErr error
		name    string
		input   string
	}{
		{name: "no amount column", input: "date,description\n2025-01-01,x", wantErr: ErrMissingColumn},
		{name: "no text columns", input: "date,amount\n2025-01-01,1", wantErr: ErrMissingColumn},
		{name: "bad amount", input: "description,amount\nx,abc"},
		{name: "bad date", input: "date,description,amount\nsoon,x,1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCSVReader().Read(context.Background(), strings.NewReader(tt.input))
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestCSVReader_Empty(t *testing.T) {
	txns, err := NewCSVReader().Read(context.Background(), strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, txns)
}
