package stats

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/recibos-extractor/internal/normalize"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestBySeller(t *testing.T) {
	rows := []normalize.Row{
		{Seller: "BRUNO", Description: "TIRZEPATIDE 50 MG", Quantity: "10", UnitPrice: dec("900")},
		{Seller: "ANA", Description: "TIRZEPATIDE 50 MG", Quantity: "2,00", UnitPrice: dec("1000")},
		{Seller: "ANA", Description: "TIRZEPATIDE 50 MG", Quantity: "2,00", UnitPrice: dec("800")},
		{Seller: "ANA", Description: "CANETA", Quantity: "1", UnitPrice: dec("150")},
	}
	got := BySeller(rows)
	require.Len(t, got, 3)

	assert.Equal(t, "ANA", got[0].Seller)
	assert.Equal(t, "CANETA", got[0].Product)
	assert.True(t, dec("150").Equal(got[0].AvgPerMG), "no strength reads as 1 mg")

	tirz := got[1]
	assert.Equal(t, "TIRZEPATIDE 50 MG", tirz.Product)
	assert.True(t, dec("4").Equal(tirz.QuantityTotal))
	assert.True(t, dec("3600").Equal(tirz.ValueTotal))
	assert.True(t, dec("18").Equal(tirz.AvgPerMG))
	assert.True(t, dec("16").Equal(tirz.MinPerMG))
	assert.True(t, dec("20").Equal(tirz.MaxPerMG))

	bruno := got[2]
	assert.Equal(t, "BRUNO", bruno.Seller)
	assert.True(t, dec("9000").Equal(bruno.ValueTotal))
	assert.True(t, dec("18").Equal(bruno.AvgPerMG))
}

func TestBySellerZeroQuantity(t *testing.T) {
	got := BySeller([]normalize.Row{{Seller: "A", Description: "X 10 MG", UnitPrice: dec("100")}})
	require.Len(t, got, 1)
	assert.True(t, got[0].AvgPerMG.IsZero())
	assert.True(t, dec("10").Equal(got[0].MinPerMG))
	assert.Empty(t, BySeller(nil))
}
