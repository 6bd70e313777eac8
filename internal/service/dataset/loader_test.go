package dataset

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stocksense/stocksense/internal/domain/models"
)

type fakeSource struct {
	name    string
	records []models.InventoryRecord
	err     error
	calls   int
}

func (f *fakeSource) Name() string { return f.name }

func (f *fakeSource) LoadRecords(context.Context) ([]models.InventoryRecord, error) {
	f.calls++
	return f.records, f.err
}

func records(names ...string) []models.InventoryRecord {
	out := make([]models.InventoryRecord, 0, len(names))
	for _, n := range names {
		out = append(out, models.InventoryRecord{ProductName: n, StockRemaining: models.IntPtr(1)})
	}
	return out
}

func TestLoader_FirstNonEmptySourceWins(t *testing.T) {
	broken := &fakeSource{name: "sqlite", err: errors.New("database is locked")}
	empty := &fakeSource{name: "csv"}
	sheets := &fakeSource{name: "sheets", records: records("Milk", "Bread")}
	never := &fakeSource{name: "extra", records: records("Eggs")}

	loader := NewLoader(nil, broken, empty, sheets, never)
	fixed := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)
	loader.now = func() time.Time { return fixed }

	snap, err := loader.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "sheets", snap.Source)
	assert.Len(t, snap.Records, 2)
	assert.Equal(t, fixed, snap.LoadedAt)
	assert.Zero(t, never.calls)
}

func TestLoader_NoData(t *testing.T) {
	_, err := NewLoader(nil).Load(context.Background())
	assert.ErrorIs(t, err, ErrNoData)

	_, err = NewLoader(nil, &fakeSource{name: "csv"}).Load(context.Background())
	assert.ErrorIs(t, err, ErrNoData)
}

func TestLoader_AllSourcesFailed(t *testing.T) {
	boom := errors.New("boom")
	loader := NewLoader(nil,
		&fakeSource{name: "upload", err: ErrNoData},
		&fakeSource{name: "sqlite", err: boom},
	)

	_, err := loader.Load(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoData)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "sqlite: boom")
}

func TestStore_ReplaceAndClear(t *testing.T) {
	store := NewStore()
	assert.Equal(t, "upload", store.Name())

	_, err := store.LoadRecords(context.Background())
	assert.ErrorIs(t, err, ErrNoData)

	in := records("Milk", "Bread")
	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	store.Replace(in, "retail.csv", at)
	in[0].ProductName = "mutated"

	got, err := store.LoadRecords(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Milk", got[0].ProductName)

	got[1].ProductName = "mutated"
	again, err := store.LoadRecords(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bread", again[1].ProductName)

	name, rows, uploadedAt := store.Info()
	assert.Equal(t, "retail.csv", name)
	assert.Equal(t, 2, rows)
	assert.Equal(t, at, uploadedAt)

	store.Clear()
	_, err = store.LoadRecords(context.Background())
	assert.ErrorIs(t, err, ErrNoData)
}

func TestStore_FeedsLoaderBeforeFallback(t *testing.T) {
	store := NewStore()
	fallback := &fakeSource{name: "csv", records: records("Rice")}
	loader := NewLoader(nil, store, fallback)

	snap, err := loader.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "csv", snap.Source)

	store.Replace(records("Milk"), "upload.csv", time.Now())
	snap, err = loader.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "upload", snap.Source)
	assert.Equal(t, "Milk", snap.Records[0].ProductName)
}
