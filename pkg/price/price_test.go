package price

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/awidjaja/tripplanner/internal/models"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name         string
		input        string
		wantAmount   string
		wantCurrency string
	}{
		{
			name:         "code prefix",
			input:        "USD 842.50",
			wantAmount:   "842.5",
			wantCurrency: "USD",
		},
		{
			name:         "dollar with thousands comma",
			input:        "$1,234",
			wantAmount:   "1234",
			wantCurrency: "USD",
		},
		{
			name:         "euro range takes low end",
			input:        "€100-150 per night",
			wantAmount:   "100",
			wantCurrency: "EUR",
		},
		{
			name:         "indonesian grouping dots",
			input:        "Rp 1.250.000",
			wantAmount:   "1250000",
			wantCurrency: "IDR",
		},
		{
			name:         "european decimal comma",
			input:        "1.234,56 EUR",
			wantAmount:   "1234.56",
			wantCurrency: "EUR",
		},
		{
			name:         "bare number",
			input:        "250",
			wantAmount:   "250",
			wantCurrency: "",
		},
		{
			name:         "zero is valid",
			input:        "USD 0",
			wantAmount:   "0",
			wantCurrency: "USD",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := Parse(tc.input)
			require.True(t, ok)
			require.NotNil(t, got)
			assert.Equal(t, tc.wantAmount, got.Amount.String())
			assert.Equal(t, tc.wantCurrency, got.Currency)
		})
	}
}

func TestParseNoDigits(t *testing.T) {
	for _, input := range []string{"", "free", "contact hotel", "$"} {
		got, ok := Parse(input)
		assert.False(t, ok, "input %q", input)
		assert.Nil(t, got)
	}
}

func TestFormat(t *testing.T) {
	tests := []struct {
		amount   string
		currency string
		want     string
	}{
		{"1234.5", "USD", "USD 1,234.50"},
		{"1250000", "IDR", "IDR 1,250,000"},
		{"99", "", "99"},
		{"-1234", "USD", "USD -1,234"},
	}

	for _, tc := range tests {
		amount, err := decimal.NewFromString(tc.amount)
		require.NoError(t, err)
		got := Format(models.Money{Amount: amount, Currency: tc.currency})
		assert.Equal(t, tc.want, got)
	}
}
