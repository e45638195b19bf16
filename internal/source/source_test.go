package source

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForPath(t *testing.T) {
	tests := []struct {
		want    Reader
		path    string
		wantErr bool
	}{
		{path: "march.json", want: &JSONReader{}},
		{path: "march.CSV", want: &CSVReader{}},
		{path: "/tmp/stmt.ofx", want: &OFXReader{}},
		{path: "stmt.qfx", want: &OFXReader{}},
		{path: "stmt.xlsx", wantErr: true},
		{path: "noext", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := ForPath(tt.path)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrUnsupportedFormat)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, tt.want, got)
		})
	}
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "txns.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"merchant": "Lyft", "amount": "-8.10"}]`), 0o600))

	txns, err := Open(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, txns, 1)
	assert.Equal(t, "lyft", txns[0].MerchantKey())

	_, err = Open(context.Background(), filepath.Join(dir, "missing.json"))
	require.Error(t, err)
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		valid   bool
		wantErr bool
	}{
		{in: "-1,234.50", want: "-1234.5", valid: true},
		{in: "$12", want: "12", valid: true},
		{in: "  ", valid: false},
		{in: "1.2.3", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseAmount(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.valid, got.Valid)
			if tt.valid {
				assert.Equal(t, tt.want, got.Decimal.String())
			}
		})
	}
}
