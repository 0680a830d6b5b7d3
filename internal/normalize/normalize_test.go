package normalize

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/recibos-extractor/internal/common"
	"github.com/joseph-ayodele/recibos-extractor/internal/entity"
)

func TestParseLocalized(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"1.080,00", "1080"},
		{"900,00", "900"},
		{"10.000", "10000"},
		{"2,5", "2.5"},
		{"R$ 1.234,56", "1234.56"},
		{" 7 ", "7"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLocalized(tt.in)
			require.NoError(t, err)
			assert.True(t, decimal.RequireFromString(tt.want).Equal(got), "got %s", got)
		})
	}

	_, err := ParseLocalized("  ")
	assert.ErrorIs(t, err, common.ErrInvalidInput)
	_, err = ParseLocalized("abc")
	assert.Error(t, err)
	assert.True(t, ParseOrZero("abc").IsZero())
}

func TestFormatBRL(t *testing.T) {
	assert.Equal(t, "1.080,00", FormatBRL(decimal.RequireFromString("1080")))
	assert.Equal(t, "900,50", FormatBRL(decimal.RequireFromString("900.5")))
	assert.Equal(t, "1.234.567,89", FormatBRL(decimal.RequireFromString("1234567.891")))
	assert.Equal(t, "-12,00", FormatBRL(decimal.RequireFromString("-12")))
	assert.Equal(t, "", FormatBRL(decimal.Zero))
}

func TestCanonicalProduct(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"TIRZEPATIDE 50 MG/2ML", "TIRZEPATIDE 50 MG"},
		{"TIRZEPATIDE 60 MG/2.4ML - SOL INJ", "TIRZEPATIDE 60 MG"},
		{"TIRZEPATIDE 100 MG", "TIRZEPATIDE 100 MG"},
		{"CANETA TIRZEPATIDE 60MG (4 DOSES 15MG) L-", "CANETA TIRZEPATIDE 60MG (4 DOSES 15MG"},
		{"TIRZEPATIDE 1 0 0 MG", "TIRZEPATIDE 100 MG"},
		{"TIRZEPATIDE 10 0 MG", "TIRZEPATIDE 100 MG"},
		{"CANETA  APLICADORA", "CANETA APLICADORA"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, CanonicalProduct(tt.in))
		})
	}
}

func TestExtractMG(t *testing.T) {
	assert.True(t, decimal.NewFromInt(50).Equal(ExtractMG("TIRZEPATIDE 50 MG")))
	assert.True(t, decimal.NewFromInt(100).Equal(ExtractMG("TIRZEPATIDE 10 MG 100 MG")))
	assert.True(t, decimal.RequireFromString("2.5").Equal(ExtractMG("SEMAGLUTIDA 2.5MG")))
	assert.True(t, decimal.NewFromInt(1).Equal(ExtractMG("CANETA")))
	assert.True(t, decimal.NewFromInt(1).Equal(ExtractMG("X 0 MG")))
}

func TestRowsAndCheck(t *testing.T) {
	records := []entity.ReceiptRecord{
		{ID: "1", Seller: "ANA", Products: []entity.ProductLine{
			{Description: "TIRZEPATIDE 50 MG/2ML", Quantity: "2,00", UnitPrice: "900,00"},
			{Description: "", Quantity: "1", UnitPrice: "1,00"},
			{Description: "CANETA", Quantity: "", UnitPrice: "0,00"},
		}},
		{ID: "2"},
	}
	rows := Rows(records)

	require.Len(t, rows, 1)
	assert.Equal(t, "TIRZEPATIDE 50 MG", rows[0].Description)
	assert.Equal(t, "2,00", rows[0].Quantity)
	assert.True(t, decimal.NewFromInt(900).Equal(rows[0].UnitPrice))
	assert.True(t, Check(rows).OK())

	assert.False(t, Check(nil).OK())
	noHeader := Check([]Row{{Description: "X", Quantity: "1"}})
	assert.False(t, noHeader.OK())
	assert.Len(t, noHeader.Problems, 1)
}
