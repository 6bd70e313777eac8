package pricing

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/stocksense/stocksense/internal/service/dataset"
)

// Suggestion is a price estimate for a requested quantity.
type Suggestion struct {
	Quantity       float64         `json:"quantity"`
	SuggestedPrice decimal.Decimal `json:"suggested_price"`
	Observations   int             `json:"observations"`
	Source         string          `json:"source"`
}

// DatasetLoader supplies the training records.
type DatasetLoader interface {
	Load(ctx context.Context) (dataset.Snapshot, error)
}

// Service fits a fresh model on the current dataset for every suggestion.
type Service struct {
	loader       DatasetLoader
	newPredictor func() Predictor
	logger       *zap.Logger
}

// NewService wires a pricing service backed by LinearRegression.
func NewService(loader DatasetLoader, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		loader:       loader,
		newPredictor: func() Predictor { return &LinearRegression{} },
		logger:       logger,
	}
}

// Suggest predicts a unit price for quantity.
func (s *Service) Suggest(ctx context.Context, quantity float64) (Suggestion, error) {
	if quantity <= 0 {
		return Suggestion{}, fmt.Errorf("quantity must be positive, got %v", quantity)
	}

	snap, err := s.loader.Load(ctx)
	if err != nil {
		return Suggestion{}, fmt.Errorf("load dataset: %w", err)
	}

	obs := ObservationsFrom(snap.Records)
	model := s.newPredictor()
	if err := model.Fit(obs); err != nil {
		return Suggestion{}, err
	}

	price, err := model.Predict(quantity)
	if err != nil {
		return Suggestion{}, err
	}

	s.logger.Debug("price suggested", zap.Float64("quantity", quantity), zap.String("price", price.String()), zap.Int("observations", len(obs)))

	return Suggestion{
		Quantity:       quantity,
		SuggestedPrice: price,
		Observations:   len(obs),
		Source:         snap.Source,
	}, nil
}
