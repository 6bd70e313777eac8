package ingest

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeHeader(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Product_Name", ColProductName},
		{"  Stock Remaining ", ColStockRemaining},
		{"\ufeffProduct", ColProductName},
		{"Expiry-Date", ColExpiryDate},
		{"QTY", ColStockRemaining},
		{"Best Before", ColExpiryDate},
		{"Unit_Price", ColUnitPrice},
		{"Supplier", "supplier"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeHeader(tt.in))
		})
	}
}

func TestValidateColumns(t *testing.T) {
	require.NoError(t, ValidateColumns([]string{ColExpiryDate, ColProductName, ColStockRemaining, "supplier"}))

	err := ValidateColumns([]string{ColProductName})
	require.ErrorIs(t, err, ErrMissingColumn)
	assert.Contains(t, err.Error(), "stock_remaining, expiry_date")
}

func TestNormalizeRow(t *testing.T) {
	rec, err := NormalizeRow(map[string]string{
		ColProductName:    "  Milk ",
		ColCategory:       "Dairy",
		ColStockRemaining: "12.0",
		ColExpiryDate:     "2024-03-01",
		ColDate:           "2024-02-20 09:30:00",
		ColQuantitySold:   "3",
		ColUnitPrice:      "₹1,250.50",
		ColRevenue:        "3751.5",
	})
	require.NoError(t, err)

	assert.Equal(t, "Milk", rec.ProductName)
	assert.Equal(t, "Dairy", rec.Category)
	require.NotNil(t, rec.StockRemaining)
	assert.Equal(t, 12, *rec.StockRemaining)
	require.NotNil(t, rec.ExpiryDate)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), *rec.ExpiryDate)
	require.NotNil(t, rec.Date)
	require.NotNil(t, rec.QuantitySold)
	assert.Equal(t, 3, *rec.QuantitySold)
	require.NotNil(t, rec.UnitPrice)
	assert.True(t, decimal.RequireFromString("1250.50").Equal(*rec.UnitPrice))
	require.NotNil(t, rec.Revenue)
}

func TestNormalizeRow_DegradesBadFields(t *testing.T) {
	rec, err := NormalizeRow(map[string]string{
		ColProductName:    "Bread",
		ColStockRemaining: "-4",
		ColExpiryDate:     "not-a-date",
		ColUnitPrice:      "free",
	})
	require.NoError(t, err)

	assert.Nil(t, rec.StockRemaining)
	assert.Nil(t, rec.ExpiryDate)
	assert.Equal(t, "not-a-date", rec.ExpiryRaw)
	assert.Nil(t, rec.UnitPrice)
	assert.Nil(t, rec.QuantitySold)
}

func TestNormalizeRow_RequiresName(t *testing.T) {
	_, err := NormalizeRow(map[string]string{ColProductName: "   ", ColStockRemaining: "4"})
	assert.ErrorIs(t, err, ErrEmptyProductName)
}

func TestParseDate(t *testing.T) {
	want := time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC)
	for _, in := range []string{"2024-01-08", "2024/01/08", "08/01/2024", " 2024-01-08 "} {
		got, err := ParseDate(in)
		require.NoError(t, err, in)
		assert.True(t, want.Equal(got), in)
	}

	_, err := ParseDate("")
	assert.Error(t, err)
	_, err = ParseDate("2024-13-45")
	assert.Error(t, err)
}

func TestParseQuantity(t *testing.T) {
	n, err := ParseQuantity("42")
	require.NoError(t, err)
	assert.Equal(t, 42, n)

	n, err = ParseQuantity("7.0")
	require.NoError(t, err)
	assert.Equal(t, 7, n)

	_, err = ParseQuantity("7.5")
	assert.Error(t, err)
	_, err = ParseQuantity("lots")
	assert.Error(t, err)
	_, err = ParseQuantity("NaN")
	assert.Error(t, err)

	for _, huge := range []string{"1e30", "-1e30", "99999999999999999999", "9.3e18"} {
		_, err = ParseQuantity(huge)
		assert.ErrorContains(t, err, "out of range", huge)
	}

	n, err = ParseQuantity("1e3")
	require.NoError(t, err)
	assert.Equal(t, 1000, n)
}

func TestNormalizeRow_DropsOutOfRangeStock(t *testing.T) {
	rec, err := NormalizeRow(map[string]string{
		ColProductName:    "Milk",
		ColStockRemaining: "1e30",
		ColExpiryDate:     "2024-01-08",
	})
	require.NoError(t, err)
	assert.Nil(t, rec.StockRemaining)
	assert.NotNil(t, rec.ExpiryDate)
}
