package ingest

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/stocksense/stocksense/internal/domain/models"
)

// Canonical column names understood by NormalizeRow.
const (
	ColProductName    = "product_name"
	ColStockRemaining = "stock_remaining"
	ColExpiryDate     = "expiry_date"
	ColCategory       = "category"
	ColDate           = "date"
	ColQuantitySold   = "quantity_sold"
	ColUnitPrice      = "unit_price"
	ColRevenue        = "revenue"
)

// ErrMissingColumn is returned when a dataset lacks a required column.
var ErrMissingColumn = errors.New("missing required column")

// ErrEmptyProductName rejects rows that cannot be displayed.
var ErrEmptyProductName = errors.New("product_name is empty")

// RequiredColumns must be present in every dataset.
var RequiredColumns = []string{ColProductName, ColStockRemaining, ColExpiryDate}

// Exports from different tools disagree on column naming (Stock_Remaining,
// quantity, Expiry ...), so every loader maps headers through this table.
var headerAliases = map[string]string{
	"product_name":    ColProductName,
	"product":         ColProductName,
	"name":            ColProductName,
	"item":            ColProductName,
	"stock_remaining": ColStockRemaining,
	"stock":           ColStockRemaining,
	"quantity":        ColStockRemaining,
	"qty":             ColStockRemaining,
	"on_hand":         ColStockRemaining,
	"expiry_date":     ColExpiryDate,
	"expiry":          ColExpiryDate,
	"expiration_date": ColExpiryDate,
	"best_before":     ColExpiryDate,
	"category":        ColCategory,
	"date":            ColDate,
	"sale_date":       ColDate,
	"quantity_sold":   ColQuantitySold,
	"units_sold":      ColQuantitySold,
	"unit_price":      ColUnitPrice,
	"price":           ColUnitPrice,
	"revenue":         ColRevenue,
	"total":           ColRevenue,
}

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006/01/02",
	"02/01/2006",
}

// NormalizeHeader maps a raw column header onto its canonical name. Unknown
// headers are returned in their cleaned form.
func NormalizeHeader(header string) string {
	cleaned := strings.ToLower(strings.TrimSpace(header))
	cleaned = strings.TrimPrefix(cleaned, "\ufeff")
	cleaned = strings.NewReplacer(" ", "_", "-", "_").Replace(cleaned)
	if canonical, ok := headerAliases[cleaned]; ok {
		return canonical
	}
	return cleaned
}

// ValidateColumns checks that all RequiredColumns are present among the
// canonical column names.
func ValidateColumns(columns []string) error {
	present := make(map[string]struct{}, len(columns))
	for _, c := range columns {
		present[c] = struct{}{}
	}
	var missing []string
	for _, req := range RequiredColumns {
		if _, ok := present[req]; !ok {
			missing = append(missing, req)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingColumn, strings.Join(missing, ", "))
	}
	return nil
}

// NormalizeRow converts a row keyed by canonical column names into an
// InventoryRecord. Only an empty product name is an error; every other field
// degrades to nil when it cannot be parsed.
func NormalizeRow(row map[string]string) (models.InventoryRecord, error) {
	name := strings.TrimSpace(row[ColProductName])
	if name == "" {
		return models.InventoryRecord{}, ErrEmptyProductName
	}

	rec := models.InventoryRecord{
		ProductName: name,
		Category:    strings.TrimSpace(row[ColCategory]),
		ExpiryRaw:   strings.TrimSpace(row[ColExpiryDate]),
	}

	if stock, err := ParseQuantity(row[ColStockRemaining]); err == nil && stock >= 0 {
		rec.StockRemaining = &stock
	}
	if expiry, err := ParseDate(rec.ExpiryRaw); err == nil {
		rec.ExpiryDate = &expiry
	}
	if date, err := ParseDate(row[ColDate]); err == nil {
		rec.Date = &date
	}
	if sold, err := ParseQuantity(row[ColQuantitySold]); err == nil && sold >= 0 {
		rec.QuantitySold = &sold
	}
	if price, err := ParseAmount(row[ColUnitPrice]); err == nil {
		rec.UnitPrice = &price
	}
	if revenue, err := ParseAmount(row[ColRevenue]); err == nil {
		rec.Revenue = &revenue
	}

	return rec, nil
}

// ParseDate accepts the date layouts commonly produced by spreadsheet and
// dataframe exports. Times are interpreted in UTC unless the value carries an
// offset.
func ParseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, errors.New("empty date")
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", value)
}

// ParseQuantity parses an integer, also accepting integral floats such as "12.0".
func ParseQuantity(value string) (int, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, errors.New("empty numeric value")
	}
	if n, err := strconv.Atoi(value); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, fmt.Errorf("non-integral quantity %q", value)
	}
	if f >= float64(math.MaxInt) || f < float64(math.MinInt) {
		return 0, fmt.Errorf("quantity %q out of range", value)
	}
	return int(f), nil
}

// ParseAmount parses a monetary value, ignoring common currency symbols and
// thousands separators.
func ParseAmount(value string) (decimal.Decimal, error) {
	value = strings.TrimSpace(value)
	value = strings.NewReplacer("₹", "", "$", "", "€", "", ",", "").Replace(value)
	if value == "" {
		return decimal.Zero, errors.New("empty amount")
	}
	return decimal.NewFromString(value)
}
