package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Sale captures a point-of-sale transaction that decrements stock.
type Sale struct {
	ID          string          `json:"id" db:"id"`
	ProductName string          `json:"product_name" db:"product_name" binding:"required"`
	Quantity    int             `json:"quantity" db:"quantity" binding:"required,gt=0"`
	UnitPrice   decimal.Decimal `json:"unit_price" db:"unit_price"`
	Total       decimal.Decimal `json:"total" db:"total"`
	SoldAt      time.Time       `json:"sold_at" db:"sold_at"`
}
