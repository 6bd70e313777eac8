package models

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
)

const hoursPerDay = 24

// InventoryRecord is one normalized row of the sales/inventory dataset.
// Optional fields are nil when the source value was missing or unparseable.
type InventoryRecord struct {
	ProductName    string           `json:"product_name"`
	Category       string           `json:"category,omitempty"`
	StockRemaining *int             `json:"stock_remaining"`
	ExpiryDate     *time.Time       `json:"expiry_date"`
	ExpiryRaw      string           `json:"-"`
	Date           *time.Time       `json:"date,omitempty"`
	QuantitySold   *int             `json:"quantity_sold,omitempty"`
	UnitPrice      *decimal.Decimal `json:"unit_price,omitempty"`
	Revenue        *decimal.Decimal `json:"revenue,omitempty"`
}

// DaysToExpiry returns the number of calendar days from evaluationDate to the
// expiry date. Both are reduced to their calendar day first, so the time of
// day never changes the result. ok is false when the record has no usable
// expiry date.
func (r InventoryRecord) DaysToExpiry(evaluationDate time.Time) (days int, ok bool) {
	if r.ExpiryDate == nil {
		return 0, false
	}
	diff := CalendarDay(*r.ExpiryDate).Sub(CalendarDay(evaluationDate)).Hours() / hoursPerDay
	return int(math.Round(diff)), true
}

// CalendarDay returns the calendar date of t, read in t's own location, as
// UTC midnight. Date-only values from the dataset are parsed into the same
// form.
func CalendarDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// IntPtr is a small helper for building optional integer fields.
func IntPtr(v int) *int {
	return &v
}

// TimePtr is a small helper for building optional time fields.
func TimePtr(t time.Time) *time.Time {
	return &t
}

// DecimalPtr is a small helper for building optional decimal fields.
func DecimalPtr(d decimal.Decimal) *decimal.Decimal {
	return &d
}
