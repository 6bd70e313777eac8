package ingest

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stocksense/stocksense/internal/domain/models"
)

const sampleCSV = `Date,Product_Name,Category,Quantity_Sold,Unit_Price,Revenue,Stock_Remaining,Expiry_Date
2024-01-01,Milk,Dairy,3,50,150,12,2024-01-05
2024-01-01,,Dairy,1,10,10,4,2024-01-05
2024-01-01,Rice,Grains,2,80,160,unknown,2024-06-30
`

func TestReadCSV(t *testing.T) {
	result, err := ReadCSV(context.Background(), strings.NewReader(sampleCSV))
	require.NoError(t, err)

	assert.Equal(t, 3, result.Total)
	assert.Equal(t, 2, result.Success)
	assert.Equal(t, 1, result.Failed)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "line 3")

	require.Len(t, result.Records, 2)
	assert.Equal(t, "Milk", result.Records[0].ProductName)
	assert.Equal(t, 12, *result.Records[0].StockRemaining)
	assert.Equal(t, "Rice", result.Records[1].ProductName)
	assert.Nil(t, result.Records[1].StockRemaining)
}

func TestReadCSV_ShortRowsKeepName(t *testing.T) {
	result, err := ReadCSV(context.Background(), strings.NewReader("product,stock,expiry\nEggs,2\n"))
	require.NoError(t, err)
	require.Len(t, result.Records, 1)
	assert.Equal(t, 2, *result.Records[0].StockRemaining)
	assert.Nil(t, result.Records[0].ExpiryDate)
}

func TestReadCSV_MissingColumn(t *testing.T) {
	_, err := ReadCSV(context.Background(), strings.NewReader("product_name,stock_remaining\nMilk,3\n"))
	require.ErrorIs(t, err, ErrMissingColumn)
	assert.Contains(t, err.Error(), "expiry_date")

	_, err = ReadCSV(context.Background(), strings.NewReader(""))
	assert.ErrorIs(t, err, ErrMissingColumn)
}

func TestReadCSV_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ReadCSV(ctx, strings.NewReader(sampleCSV))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFileSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "retail.csv")
	require.NoError(t, os.WriteFile(path, []byte(sampleCSV), 0o600))

	src := FileSource{Path: path}
	assert.Equal(t, "csv", src.Name())

	records, err := src.LoadRecords(context.Background())
	require.NoError(t, err)
	assert.Len(t, records, 2)

	_, err = FileSource{Path: filepath.Join(t.TempDir(), "missing.csv")}.LoadRecords(context.Background())
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestWriteCSV_RoundTrip(t *testing.T) {
	in, err := ReadCSV(context.Background(), strings.NewReader(sampleCSV))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, append(in.Records, models.InventoryRecord{ProductName: "Bare"})))

	out, err := ReadCSV(context.Background(), &buf)
	require.NoError(t, err)
	require.Len(t, out.Records, 3)
	assert.Equal(t, in.Records[0].ProductName, out.Records[0].ProductName)
	assert.Equal(t, *in.Records[0].StockRemaining, *out.Records[0].StockRemaining)
	assert.True(t, in.Records[0].ExpiryDate.Equal(*out.Records[0].ExpiryDate))
	assert.True(t, in.Records[0].UnitPrice.Equal(*out.Records[0].UnitPrice))
	assert.Nil(t, out.Records[2].StockRemaining)
}
