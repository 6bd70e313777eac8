package alerts

import (
	"errors"
	"fmt"
	"time"

	"github.com/stocksense/stocksense/internal/domain/models"
)

const expiryDateLayout = "2006-01-02"

// ErrInvalidThreshold is wrapped by every ConfigurationError.
var ErrInvalidThreshold = errors.New("invalid threshold")

// ConfigurationError reports a threshold the evaluator refuses to run with.
type ConfigurationError struct {
	Field string
	Value int
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%s must be >= 0, got %d", e.Field, e.Value)
}

func (e *ConfigurationError) Unwrap() error {
	return ErrInvalidThreshold
}

// ValidateThresholds rejects negative thresholds.
func ValidateThresholds(t models.AlertThresholds) error {
	if t.StockThreshold < 0 {
		return &ConfigurationError{Field: "stock_threshold", Value: t.StockThreshold}
	}
	if t.ExpiryWindowDays < 0 {
		return &ConfigurationError{Field: "expiry_window_days", Value: t.ExpiryWindowDays}
	}
	return nil
}

// EvaluateStockAlerts emits a StockLow alert, in input order, for every record
// whose known stock is strictly below stockThreshold. Records without a stock
// value never alert.
func EvaluateStockAlerts(records []models.InventoryRecord, stockThreshold int) ([]models.Alert, error) {
	if stockThreshold < 0 {
		return nil, &ConfigurationError{Field: "stock_threshold", Value: stockThreshold}
	}
	out, _ := stockAlerts(records, stockThreshold)
	return out, nil
}

// EvaluateExpiryAlerts emits ExpiringSoon alerts for records expiring within
// expiryWindowDays of evaluationDate, and Expired alerts for every record whose
// expiry is already in the past. Records without an expiry date are skipped.
func EvaluateExpiryAlerts(records []models.InventoryRecord, expiryWindowDays int, evaluationDate time.Time) ([]models.Alert, error) {
	if expiryWindowDays < 0 {
		return nil, &ConfigurationError{Field: "expiry_window_days", Value: expiryWindowDays}
	}
	out, _ := expiryAlerts(records, expiryWindowDays, evaluationDate)
	return out, nil
}

// EvaluateAll runs both rule sets against the same evaluationDate.
func EvaluateAll(records []models.InventoryRecord, thresholds models.AlertThresholds, evaluationDate time.Time) (models.Evaluation, error) {
	if err := ValidateThresholds(thresholds); err != nil {
		return models.Evaluation{}, err
	}

	stock, skippedStock := stockAlerts(records, thresholds.StockThreshold)
	expiry, skippedExpiry := expiryAlerts(records, thresholds.ExpiryWindowDays, evaluationDate)

	return models.Evaluation{
		StockAlerts:   stock,
		ExpiryAlerts:  expiry,
		Total:         len(stock) + len(expiry),
		SkippedStock:  skippedStock,
		SkippedExpiry: skippedExpiry,
		Thresholds:    thresholds,
		EvaluatedAt:   evaluationDate,
	}, nil
}

func stockAlerts(records []models.InventoryRecord, threshold int) ([]models.Alert, int) {
	out := make([]models.Alert, 0)
	skipped := 0

	for _, r := range records {
		if r.StockRemaining == nil {
			skipped++
			continue
		}
		stock := *r.StockRemaining
		if stock >= threshold {
			continue
		}
		out = append(out, models.Alert{
			Kind:          models.AlertStockLow,
			ProductName:   r.ProductName,
			Message:       fmt.Sprintf("%s is low in stock (%d units left). Please refill.", r.ProductName, stock),
			NumericDetail: stock,
		})
	}

	return out, skipped
}

func expiryAlerts(records []models.InventoryRecord, window int, evaluationDate time.Time) ([]models.Alert, int) {
	out := make([]models.Alert, 0)
	skipped := 0

	for _, r := range records {
		days, ok := r.DaysToExpiry(evaluationDate)
		if !ok {
			skipped++
			continue
		}

		switch {
		case days < 0:
			out = append(out, models.Alert{
				Kind:          models.AlertExpired,
				ProductName:   r.ProductName,
				Message:       fmt.Sprintf("%s expired on %s.", r.ProductName, r.ExpiryDate.Format(expiryDateLayout)),
				NumericDetail: days,
			})
		case days <= window:
			out = append(out, models.Alert{
				Kind:          models.AlertExpiringSoon,
				ProductName:   r.ProductName,
				Message:       fmt.Sprintf("%s is expiring in %d day(s).", r.ProductName, days),
				NumericDetail: days,
			})
		}
	}

	return out, skipped
}
