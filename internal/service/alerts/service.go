package alerts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/stocksense/stocksense/internal/domain/models"
	"github.com/stocksense/stocksense/internal/metrics"
	"github.com/stocksense/stocksense/internal/service/dataset"
)

// ErrHistoryDisabled is returned by history operations when no store is configured.
var ErrHistoryDisabled = errors.New("alert history disabled")

// DatasetLoader supplies the records for one evaluation pass.
type DatasetLoader interface {
	Load(ctx context.Context) (dataset.Snapshot, error)
}

// HistoryStore archives alert reports.
type HistoryStore interface {
	SaveAlertReport(ctx context.Context, report models.AlertReport) error
	ListAlertReports(ctx context.Context, limit int64) ([]models.AlertReport, error)
}

// Service runs evaluations against the current dataset.
type Service struct {
	loader   DatasetLoader
	history  HistoryStore
	metrics  *metrics.Collector
	location *time.Location
	logger   *zap.Logger
	now      func() time.Time
}

// NewService wires an alert service. history and collector may be nil.
func NewService(loader DatasetLoader, history HistoryStore, collector *metrics.Collector, location *time.Location, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if location == nil {
		location = time.UTC
	}
	return &Service{
		loader:   loader,
		history:  history,
		metrics:  collector,
		location: location,
		logger:   logger,
		now:      time.Now,
	}
}

// Run loads a dataset snapshot and evaluates it against thresholds. The clock
// is read once and reduced to the calendar day in the configured location, so
// every alert in the pass shares it.
func (s *Service) Run(ctx context.Context, thresholds models.AlertThresholds) (models.AlertReport, error) {
	if err := ValidateThresholds(thresholds); err != nil {
		return models.AlertReport{}, err
	}

	snap, err := s.loader.Load(ctx)
	if err != nil {
		return models.AlertReport{}, fmt.Errorf("load dataset: %w", err)
	}

	now := s.now().In(s.location)
	eval, err := EvaluateAll(snap.Records, thresholds, models.CalendarDay(now))
	if err != nil {
		return models.AlertReport{}, err
	}

	s.metrics.RecordEvaluation(eval, len(snap.Records))
	s.logger.Info("alerts evaluated",
		zap.String("source", snap.Source),
		zap.Int("records", len(snap.Records)),
		zap.Int("stock_alerts", len(eval.StockAlerts)),
		zap.Int("expiry_alerts", len(eval.ExpiryAlerts)),
		zap.Int("skipped_stock", eval.SkippedStock),
		zap.Int("skipped_expiry", eval.SkippedExpiry))

	return models.AlertReport{
		ID:           uuid.NewString(),
		Source:       snap.Source,
		RecordsCount: len(snap.Records),
		Evaluation:   eval,
		CreatedAt:    now,
	}, nil
}

// Archive stores report when history is enabled; otherwise it is a no-op.
func (s *Service) Archive(ctx context.Context, report models.AlertReport) error {
	if s.history == nil {
		return nil
	}
	if err := s.history.SaveAlertReport(ctx, report); err != nil {
		return fmt.Errorf("archive alert report %s: %w", report.ID, err)
	}
	return nil
}

// History lists the most recent archived reports.
func (s *Service) History(ctx context.Context, limit int64) ([]models.AlertReport, error) {
	if s.history == nil {
		return nil, ErrHistoryDisabled
	}
	return s.history.ListAlertReports(ctx, limit)
}
