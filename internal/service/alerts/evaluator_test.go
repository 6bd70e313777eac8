package alerts

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stocksense/stocksense/internal/domain/models"
	"github.com/stocksense/stocksense/internal/ingest"
)

func date(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", s)
	require.NoError(t, err)
	return d
}

func stockRecord(name string, stock int) models.InventoryRecord {
	return models.InventoryRecord{ProductName: name, StockRemaining: models.IntPtr(stock)}
}

func expiryRecord(t *testing.T, name, expiry string) models.InventoryRecord {
	return models.InventoryRecord{ProductName: name, ExpiryDate: models.TimePtr(date(t, expiry)), ExpiryRaw: expiry}
}

func TestEvaluateStockAlerts_ThresholdBoundary(t *testing.T) {
	records := []models.InventoryRecord{stockRecord("Milk", 19), stockRecord("Bread", 20)}

	got, err := EvaluateStockAlerts(records, 20)
	require.NoError(t, err)
	require.Len(t, got, 1)

	assert.Equal(t, models.Alert{
		Kind:          models.AlertStockLow,
		ProductName:   "Milk",
		Message:       "Milk is low in stock (19 units left). Please refill.",
		NumericDetail: 19,
	}, got[0])
}

func TestEvaluateStockAlerts_PreservesInputOrder(t *testing.T) {
	records := []models.InventoryRecord{stockRecord("A", 3), stockRecord("B", 1), stockRecord("C", 25)}

	got, err := EvaluateStockAlerts(records, 20)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "A", got[0].ProductName)
	assert.Equal(t, "B", got[1].ProductName)
}

func TestEvaluateStockAlerts_SkipsMissingStock(t *testing.T) {
	records := []models.InventoryRecord{{ProductName: "Ghost"}, stockRecord("Eggs", 0)}

	got, err := EvaluateStockAlerts(records, 5)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Eggs", got[0].ProductName)
}

func TestEvaluateStockAlerts_ZeroThresholdNeverAlerts(t *testing.T) {
	got, err := EvaluateStockAlerts([]models.InventoryRecord{stockRecord("Eggs", 0)}, 0)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestEvaluateStockAlerts_RejectsNegativeThreshold(t *testing.T) {
	got, err := EvaluateStockAlerts([]models.InventoryRecord{stockRecord("Milk", 1)}, -1)
	require.Error(t, err)
	assert.Nil(t, got)

	var cfgErr *ConfigurationError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "stock_threshold", cfgErr.Field)
	assert.Equal(t, -1, cfgErr.Value)
	assert.ErrorIs(t, err, ErrInvalidThreshold)
}

func TestEvaluateExpiryAlerts_WindowBoundary(t *testing.T) {
	today := date(t, "2024-01-01")
	records := []models.InventoryRecord{
		expiryRecord(t, "Yogurt", "2024-01-08"),
		expiryRecord(t, "Cheese", "2024-01-09"),
	}

	got, err := EvaluateExpiryAlerts(records, 7, today)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, models.Alert{
		Kind:          models.AlertExpiringSoon,
		ProductName:   "Yogurt",
		Message:       "Yogurt is expiring in 7 day(s).",
		NumericDetail: 7,
	}, got[0])
}

func TestEvaluateExpiryAlerts_SameDayIsExpiringNotExpired(t *testing.T) {
	today := date(t, "2024-01-01")

	got, err := EvaluateExpiryAlerts([]models.InventoryRecord{expiryRecord(t, "Juice", "2024-01-01")}, 0, today)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, models.AlertExpiringSoon, got[0].Kind)
	assert.Equal(t, "Juice is expiring in 0 day(s).", got[0].Message)
}

func TestEvaluateExpiryAlerts_ExpiredRegardlessOfWindow(t *testing.T) {
	today := date(t, "2024-01-01")
	records := []models.InventoryRecord{expiryRecord(t, "Milk", "2023-12-31")}

	for _, window := range []int{0, 1, 7, 365} {
		got, err := EvaluateExpiryAlerts(records, window, today)
		require.NoError(t, err)
		require.Len(t, got, 1, "window %d", window)
		assert.Equal(t, models.Alert{
			Kind:          models.AlertExpired,
			ProductName:   "Milk",
			Message:       "Milk expired on 2023-12-31.",
			NumericDetail: -1,
		}, got[0])
	}
}

func TestEvaluateExpiryAlerts_CountsCalendarDays(t *testing.T) {
	records := []models.InventoryRecord{
		expiryRecord(t, "Yogurt", "2024-01-08"),
		expiryRecord(t, "Bread", "2024-01-01"),
		expiryRecord(t, "Milk", "2023-12-31"),
	}

	tests := []struct {
		name string
		now  time.Time
	}{
		{"midnight", date(t, "2024-01-01")},
		{"mid-morning", date(t, "2024-01-01").Add(10 * time.Hour)},
		{"late evening", date(t, "2024-01-01").Add(23*time.Hour + 59*time.Minute)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := EvaluateExpiryAlerts(records, 7, tt.now)
			require.NoError(t, err)
			require.Len(t, got, 3)

			assert.Equal(t, models.AlertExpiringSoon, got[0].Kind)
			assert.Equal(t, 7, got[0].NumericDetail)
			assert.Equal(t, models.AlertExpiringSoon, got[1].Kind)
			assert.Equal(t, "Bread is expiring in 0 day(s).", got[1].Message)
			assert.Equal(t, models.AlertExpired, got[2].Kind)
			assert.Equal(t, -1, got[2].NumericDetail)
		})
	}
}

func TestEvaluateExpiryAlerts_UnparseableDateIsSkipped(t *testing.T) {
	rec, err := ingest.NormalizeRow(map[string]string{
		ingest.ColProductName:    "Mystery",
		ingest.ColStockRemaining: "4",
		ingest.ColExpiryDate:     "not-a-date",
	})
	require.NoError(t, err)

	var got []models.Alert
	require.NotPanics(t, func() {
		got, err = EvaluateExpiryAlerts([]models.InventoryRecord{rec}, 30, date(t, "2024-01-01"))
	})
	require.NoError(t, err)
	assert.Empty(t, got)

	stock, err := EvaluateStockAlerts([]models.InventoryRecord{rec}, 20)
	require.NoError(t, err)
	assert.Len(t, stock, 1, "unparseable expiry must not affect stock evaluation")
}

func TestEvaluateExpiryAlerts_RejectsNegativeWindow(t *testing.T) {
	_, err := EvaluateExpiryAlerts(nil, -3, date(t, "2024-01-01"))
	var cfgErr *ConfigurationError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "expiry_window_days", cfgErr.Field)
}

func TestEvaluateAll_EmptyInput(t *testing.T) {
	eval, err := EvaluateAll(nil, models.AlertThresholds{StockThreshold: 20, ExpiryWindowDays: 7}, date(t, "2024-01-01"))
	require.NoError(t, err)
	assert.NotNil(t, eval.StockAlerts)
	assert.NotNil(t, eval.ExpiryAlerts)
	assert.Empty(t, eval.StockAlerts)
	assert.Empty(t, eval.ExpiryAlerts)
	assert.Zero(t, eval.Total)
}

func TestEvaluateAll_ComposesAndCountsSkips(t *testing.T) {
	today := date(t, "2024-01-01")
	records := []models.InventoryRecord{
		{ProductName: "Milk", StockRemaining: models.IntPtr(2), ExpiryDate: models.TimePtr(date(t, "2024-01-03"))},
		{ProductName: "Milk", StockRemaining: models.IntPtr(3), ExpiryDate: models.TimePtr(date(t, "2023-12-25"))},
		{ProductName: "Rice", StockRemaining: models.IntPtr(80)},
		{ProductName: "Salt"},
	}

	eval, err := EvaluateAll(records, models.AlertThresholds{StockThreshold: 20, ExpiryWindowDays: 7}, today)
	require.NoError(t, err)

	assert.Len(t, eval.StockAlerts, 2, "duplicate products are evaluated per row")
	require.Len(t, eval.ExpiryAlerts, 2)
	assert.Equal(t, models.AlertExpiringSoon, eval.ExpiryAlerts[0].Kind)
	assert.Equal(t, models.AlertExpired, eval.ExpiryAlerts[1].Kind)
	assert.Equal(t, 4, eval.Total)
	assert.Equal(t, 1, eval.SkippedStock)
	assert.Equal(t, 2, eval.SkippedExpiry)
	assert.Equal(t, today, eval.EvaluatedAt)
	assert.Len(t, eval.Alerts(), 4)
}

func TestEvaluateAll_IsDeterministic(t *testing.T) {
	today := date(t, "2024-01-01")
	records := []models.InventoryRecord{
		{ProductName: "A", StockRemaining: models.IntPtr(1), ExpiryDate: models.TimePtr(date(t, "2024-01-02"))},
		{ProductName: "B", StockRemaining: models.IntPtr(5), ExpiryDate: models.TimePtr(date(t, "2023-11-02"))},
		{ProductName: "C", StockRemaining: models.IntPtr(50)},
	}
	thresholds := models.AlertThresholds{StockThreshold: 10, ExpiryWindowDays: 3}

	first, err := EvaluateAll(records, thresholds, today)
	require.NoError(t, err)
	second, err := EvaluateAll(records, thresholds, today)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestEvaluateAll_RejectsBeforeTouchingRecords(t *testing.T) {
	// A nil-stock record would be counted as skipped if evaluation started.
	_, err := EvaluateAll([]models.InventoryRecord{{ProductName: "X"}}, models.AlertThresholds{StockThreshold: -1}, date(t, "2024-01-01"))
	assert.ErrorIs(t, err, ErrInvalidThreshold)
}
