package models

import "time"

// AlertKind classifies an inventory alert.
type AlertKind string

const (
	AlertStockLow     AlertKind = "stock_low"
	AlertExpiringSoon AlertKind = "expiring_soon"
	AlertExpired      AlertKind = "expired"
)

// Alert is a single human-readable finding produced by one evaluation pass.
type Alert struct {
	Kind          AlertKind `json:"kind" bson:"kind"`
	ProductName   string    `json:"product_name" bson:"product_name"`
	Message       string    `json:"message" bson:"message"`
	NumericDetail int       `json:"numeric_detail" bson:"numeric_detail"`
}

// AlertThresholds configures one evaluation.
type AlertThresholds struct {
	StockThreshold   int `json:"stock_threshold" bson:"stock_threshold"`
	ExpiryWindowDays int `json:"expiry_window_days" bson:"expiry_window_days"`
}

// Evaluation is the outcome of evaluating stock and expiry rules over a dataset.
type Evaluation struct {
	StockAlerts   []Alert         `json:"stock_alerts" bson:"stock_alerts"`
	ExpiryAlerts  []Alert         `json:"expiry_alerts" bson:"expiry_alerts"`
	Total         int             `json:"total" bson:"total"`
	SkippedStock  int             `json:"skipped_stock" bson:"skipped_stock"`
	SkippedExpiry int             `json:"skipped_expiry" bson:"skipped_expiry"`
	Thresholds    AlertThresholds `json:"thresholds" bson:"thresholds"`
	EvaluatedAt   time.Time       `json:"evaluated_at" bson:"evaluated_at"`
}

// Alerts returns stock alerts followed by expiry alerts.
func (e Evaluation) Alerts() []Alert {
	out := make([]Alert, 0, len(e.StockAlerts)+len(e.ExpiryAlerts))
	out = append(out, e.StockAlerts...)
	return append(out, e.ExpiryAlerts...)
}
