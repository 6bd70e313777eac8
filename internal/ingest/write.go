package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/stocksense/stocksense/internal/domain/models"
)

var exportColumns = []string{
	ColDate, ColProductName, ColCategory, ColQuantitySold, ColUnitPrice, ColRevenue, ColStockRemaining, ColExpiryDate,
}

// WriteCSV renders records with canonical headers. Unparseable expiry values
// are written back verbatim.
func WriteCSV(w io.Writer, records []models.InventoryRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(exportColumns); err != nil {
		return err
	}

	for _, r := range records {
		row := make([]string, 0, len(exportColumns))
		row = append(row, formatDate(r.Date, "2006-01-02 15:04:05"), r.ProductName, r.Category)
		row = append(row, formatInt(r.QuantitySold))
		if r.UnitPrice != nil {
			row = append(row, r.UnitPrice.String())
		} else {
			row = append(row, "")
		}
		if r.Revenue != nil {
			row = append(row, r.Revenue.String())
		} else {
			row = append(row, "")
		}
		row = append(row, formatInt(r.StockRemaining))
		if r.ExpiryDate != nil {
			row = append(row, r.ExpiryDate.Format("2006-01-02"))
		} else {
			row = append(row, r.ExpiryRaw)
		}

		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("write dataset csv: %w", err)
	}
	return nil
}

func formatInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func formatDate(t *time.Time, layout string) string {
	if t == nil {
		return ""
	}
	return t.Format(layout)
}
