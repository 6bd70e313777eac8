package reporting

import (
	"context"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/stocksense/stocksense/internal/domain/models"
	"github.com/stocksense/stocksense/internal/service/dataset"
)

const defaultTopN = 10

// ProductRevenue is a product's revenue total across all its rows.
type ProductRevenue struct {
	ProductName string          `json:"product_name"`
	Revenue     decimal.Decimal `json:"revenue"`
	ItemsSold   int             `json:"items_sold"`
}

// Summary holds the dashboard headline metrics.
type Summary struct {
	Source         string           `json:"source"`
	Records        int              `json:"records"`
	TotalRevenue   decimal.Decimal  `json:"total_revenue"`
	ItemsSold      int              `json:"items_sold"`
	UniqueProducts int              `json:"unique_products"`
	TopProducts    []ProductRevenue `json:"top_products"`
}

// DatasetLoader supplies the records to summarize.
type DatasetLoader interface {
	Load(ctx context.Context) (dataset.Snapshot, error)
}

// Service exposes dashboard analytics.
type Service struct {
	loader DatasetLoader
	logger *zap.Logger
}

// NewService wires a new reporting service instance.
func NewService(loader DatasetLoader, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{loader: loader, logger: logger}
}

// Dashboard loads the current dataset and summarizes it.
func (s *Service) Dashboard(ctx context.Context, topN int) (Summary, error) {
	snap, err := s.loader.Load(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("load dataset: %w", err)
	}

	summary := Summarize(snap.Records, topN)
	summary.Source = snap.Source

	s.logger.Debug("dashboard computed",
		zap.String("source", snap.Source),
		zap.Int("records", summary.Records),
		zap.String("revenue", summary.TotalRevenue.StringFixed(2)))

	return summary, nil
}

// Summarize aggregates revenue, units sold and product variety. Rows without
// a revenue figure contribute quantity_sold x unit_price when both are known.
func Summarize(records []models.InventoryRecord, topN int) Summary {
	if topN <= 0 {
		topN = defaultTopN
	}

	byProduct := make(map[string]*ProductRevenue)
	summary := Summary{Records: len(records), TotalRevenue: decimal.Zero}

	for _, r := range records {
		p, ok := byProduct[r.ProductName]
		if !ok {
			p = &ProductRevenue{ProductName: r.ProductName, Revenue: decimal.Zero}
			byProduct[r.ProductName] = p
		}

		revenue := rowRevenue(r)
		p.Revenue = p.Revenue.Add(revenue)
		summary.TotalRevenue = summary.TotalRevenue.Add(revenue)

		if r.QuantitySold != nil {
			p.ItemsSold += *r.QuantitySold
			summary.ItemsSold += *r.QuantitySold
		}
	}

	summary.UniqueProducts = len(byProduct)

	ranked := make([]ProductRevenue, 0, len(byProduct))
	for _, p := range byProduct {
		ranked = append(ranked, *p)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if c := ranked[i].Revenue.Cmp(ranked[j].Revenue); c != 0 {
			return c > 0
		}
		return ranked[i].ProductName < ranked[j].ProductName
	})
	if len(ranked) > topN {
		ranked = ranked[:topN]
	}
	summary.TopProducts = ranked

	return summary
}

func rowRevenue(r models.InventoryRecord) decimal.Decimal {
	if r.Revenue != nil {
		return *r.Revenue
	}
	if r.QuantitySold != nil && r.UnitPrice != nil {
		return r.UnitPrice.Mul(decimal.NewFromInt(int64(*r.QuantitySold)))
	}
	return decimal.Zero
}
