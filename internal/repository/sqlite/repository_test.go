package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stocksense/stocksense/internal/domain/models"
)

func openMemory(t *testing.T) *Repository {
	t.Helper()
	repo, err := Open(context.Background(), ":memory:", "sales_data", nil)
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func seed(t *testing.T, repo *Repository) {
	t.Helper()
	expiry := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)
	n, err := repo.ImportRecords(context.Background(), []models.InventoryRecord{
		{
			ProductName:    "Milk",
			Category:       "Dairy",
			StockRemaining: models.IntPtr(5),
			ExpiryDate:     &expiry,
			QuantitySold:   models.IntPtr(3),
			UnitPrice:      models.DecimalPtr(decimal.NewFromInt(50)),
			Revenue:        models.DecimalPtr(decimal.NewFromInt(150)),
		},
		{ProductName: "Rice", StockRemaining: models.IntPtr(40), ExpiryRaw: "someday"},
		{ProductName: "Salt"},
	})
	require.NoError(t, err)
	require.Equal(t, 3, n)
}

func TestOpenRejectsUnsafeTableName(t *testing.T) {
	_, err := Open(context.Background(), ":memory:", `sales"; DROP TABLE x; --`, nil)
	assert.Error(t, err)
}

func TestImportAndLoadRecords(t *testing.T) {
	repo := openMemory(t)
	assert.Equal(t, "sqlite", repo.Name())

	empty, err := repo.LoadRecords(context.Background())
	require.NoError(t, err)
	assert.Empty(t, empty)

	seed(t, repo)

	records, err := repo.LoadRecords(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 3)

	milk := records[0]
	assert.Equal(t, "Milk", milk.ProductName)
	assert.Equal(t, "Dairy", milk.Category)
	require.NotNil(t, milk.StockRemaining)
	assert.Equal(t, 5, *milk.StockRemaining)
	require.NotNil(t, milk.ExpiryDate)
	assert.Equal(t, "2024-01-05", milk.ExpiryDate.Format("2006-01-02"))
	require.NotNil(t, milk.Revenue)
	assert.True(t, decimal.NewFromInt(150).Equal(*milk.Revenue))

	rice := records[1]
	assert.Nil(t, rice.ExpiryDate)
	assert.Equal(t, "someday", rice.ExpiryRaw)

	assert.Nil(t, records[2].StockRemaining)

	// Re-importing replaces rather than appends.
	seed(t, repo)
	records, err = repo.LoadRecords(context.Background())
	require.NoError(t, err)
	assert.Len(t, records, 3)
}

func TestRecordSale(t *testing.T) {
	repo := openMemory(t)
	seed(t, repo)
	ctx := context.Background()

	sale, err := repo.RecordSale(ctx, models.Sale{ProductName: "Milk", Quantity: 2})
	require.NoError(t, err)
	assert.NotEmpty(t, sale.ID)
	assert.False(t, sale.SoldAt.IsZero())
	assert.True(t, decimal.NewFromInt(50).Equal(sale.UnitPrice), sale.UnitPrice.String())
	assert.True(t, decimal.NewFromInt(100).Equal(sale.Total), sale.Total.String())

	records, err := repo.LoadRecords(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, *records[0].StockRemaining)

	// Overselling clamps stock at zero.
	_, err = repo.RecordSale(ctx, models.Sale{ProductName: "Milk", Quantity: 10, UnitPrice: decimal.RequireFromString("45.5")})
	require.NoError(t, err)
	records, err = repo.LoadRecords(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, *records[0].StockRemaining)

	sales, err := repo.ListSales(ctx, 0)
	require.NoError(t, err)
	require.Len(t, sales, 2)
	totals := []string{sales[0].Total.String(), sales[1].Total.String()}
	assert.ElementsMatch(t, []string{"100", "455"}, totals)
}

func TestRecordSaleErrors(t *testing.T) {
	repo := openMemory(t)
	seed(t, repo)

	_, err := repo.RecordSale(context.Background(), models.Sale{ProductName: "Caviar", Quantity: 1})
	assert.ErrorIs(t, err, ErrProductNotFound)

	_, err = repo.RecordSale(context.Background(), models.Sale{ProductName: "Milk", Quantity: 0})
	assert.Error(t, err)

	sales, err := repo.ListSales(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, sales)
}
