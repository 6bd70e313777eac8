package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/stocksense/stocksense/internal/domain/models"
)

const jobTimeout = 2 * time.Minute

// AlertRunner evaluates and archives alerts.
type AlertRunner interface {
	Run(ctx context.Context, thresholds models.AlertThresholds) (models.AlertReport, error)
	Archive(ctx context.Context, report models.AlertReport) error
}

// Notifier dispatches a report to the notification sinks.
type Notifier interface {
	Dispatch(ctx context.Context, report models.AlertReport) []models.Delivery
}

// Scheduler manages scheduled tasks.
type Scheduler struct {
	cron       *cron.Cron
	schedule   string
	thresholds models.AlertThresholds
	alerts     AlertRunner
	notifier   Notifier
	logger     *zap.Logger
}

// NewScheduler creates a scheduler that runs the alert job on schedule, a
// standard 5-field cron expression interpreted in location.
func NewScheduler(schedule string, location *time.Location, thresholds models.AlertThresholds, alerts AlertRunner, notifier Notifier, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if location == nil {
		location = time.UTC
	}

	return &Scheduler{
		cron:       cron.New(cron.WithLocation(location)),
		schedule:   schedule,
		thresholds: thresholds,
		alerts:     alerts,
		notifier:   notifier,
		logger:     logger,
	}
}

// Start registers the alert job and starts the scheduler.
func (s *Scheduler) Start() error {
	s.logger.Info("starting scheduler", zap.String("schedule", s.schedule))

	if _, err := s.cron.AddFunc(s.schedule, s.runAlertJob); err != nil {
		return fmt.Errorf("schedule alert job %q: %w", s.schedule, err)
	}

	s.cron.Start()
	return nil
}

// Stop stops the scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()
}

func (s *Scheduler) runAlertJob() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	RunAlertJob(ctx, s.thresholds, s.alerts, s.notifier, s.logger)
}

// RunAlertJob evaluates, notifies and archives once. Each step logs its own
// failure and the job continues where it can.
func RunAlertJob(ctx context.Context, thresholds models.AlertThresholds, alerts AlertRunner, notifier Notifier, logger *zap.Logger) (models.AlertReport, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	report, err := alerts.Run(ctx, thresholds)
	if err != nil {
		logger.Error("alert evaluation failed", zap.Error(err))
		return models.AlertReport{}, err
	}

	if notifier != nil {
		report.Deliveries = notifier.Dispatch(ctx, report)
	}

	if err := alerts.Archive(ctx, report); err != nil {
		logger.Error("failed to archive alert report", zap.String("report_id", report.ID), zap.Error(err))
	}

	logger.Info("alert job finished",
		zap.String("report_id", report.ID),
		zap.Int("alerts", report.Evaluation.Total),
		zap.Int("deliveries", len(report.Deliveries)))

	return report, nil
}
