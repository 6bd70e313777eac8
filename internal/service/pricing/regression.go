package pricing

import (
	"errors"
	"math"

	"github.com/shopspring/decimal"

	"github.com/stocksense/stocksense/internal/domain/models"
)

var (
	// ErrInsufficientData is returned when observations cannot determine a line.
	ErrInsufficientData = errors.New("insufficient data to fit price model")
	// ErrNotFitted is returned by Predict before Fit succeeded.
	ErrNotFitted = errors.New("price model not fitted")
)

// Observation pairs a quantity sold with the unit price it sold at.
type Observation struct {
	Quantity  float64
	UnitPrice float64
}

// Predictor fits historical observations and suggests a price for a quantity.
type Predictor interface {
	Fit(observations []Observation) error
	Predict(quantity float64) (decimal.Decimal, error)
}

// LinearRegression is an ordinary least squares fit of unit price on quantity.
type LinearRegression struct {
	Slope     float64
	Intercept float64
	fitted    bool
}

// Fit computes slope and intercept.
func (m *LinearRegression) Fit(observations []Observation) error {
	n := float64(len(observations))
	if n < 2 {
		return ErrInsufficientData
	}

	var sumX, sumY float64
	for _, o := range observations {
		sumX += o.Quantity
		sumY += o.UnitPrice
	}
	meanX, meanY := sumX/n, sumY/n

	var sxx, sxy float64
	for _, o := range observations {
		dx := o.Quantity - meanX
		sxx += dx * dx
		sxy += dx * (o.UnitPrice - meanY)
	}
	if sxx == 0 {
		return ErrInsufficientData
	}

	m.Slope = sxy / sxx
	m.Intercept = meanY - m.Slope*meanX
	m.fitted = true
	return nil
}

// Predict returns the fitted unit price for quantity, rounded to cents.
func (m *LinearRegression) Predict(quantity float64) (decimal.Decimal, error) {
	if !m.fitted {
		return decimal.Zero, ErrNotFitted
	}
	price := m.Intercept + m.Slope*quantity
	if math.IsNaN(price) || math.IsInf(price, 0) {
		return decimal.Zero, ErrInsufficientData
	}
	return decimal.NewFromFloat(price).Round(2), nil
}

// ObservationsFrom derives (quantity, unit price) pairs from the dataset.
// Unit price is revenue / quantity_sold when possible, else the recorded unit
// price. Rows without a quantity or price are dropped.
func ObservationsFrom(records []models.InventoryRecord) []Observation {
	out := make([]Observation, 0, len(records))
	for _, r := range records {
		if r.QuantitySold == nil || *r.QuantitySold <= 0 {
			continue
		}
		qty := decimal.NewFromInt(int64(*r.QuantitySold))

		var price decimal.Decimal
		switch {
		case r.Revenue != nil:
			price = r.Revenue.Div(qty)
		case r.UnitPrice != nil:
			price = *r.UnitPrice
		default:
			continue
		}

		p, _ := price.Float64()
		out = append(out, Observation{Quantity: float64(*r.QuantitySold), UnitPrice: p})
	}
	return out
}
