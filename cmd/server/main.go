package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/stocksense/stocksense/internal/config"
	"github.com/stocksense/stocksense/internal/domain/models"
	"github.com/stocksense/stocksense/internal/ingest"
	"github.com/stocksense/stocksense/internal/metrics"
	"github.com/stocksense/stocksense/internal/repository/mongodb"
	"github.com/stocksense/stocksense/internal/repository/sheets"
	"github.com/stocksense/stocksense/internal/repository/sqlite"
	"github.com/stocksense/stocksense/internal/scheduler"
	"github.com/stocksense/stocksense/internal/server/handlers"
	"github.com/stocksense/stocksense/internal/server/router"
	alertsvc "github.com/stocksense/stocksense/internal/service/alerts"
	"github.com/stocksense/stocksense/internal/service/dataset"
	"github.com/stocksense/stocksense/internal/service/notify"
	pricingsvc "github.com/stocksense/stocksense/internal/service/pricing"
	reportingsvc "github.com/stocksense/stocksense/internal/service/reporting"
	"github.com/stocksense/stocksense/pkg/clients/mailer"
	"github.com/stocksense/stocksense/pkg/clients/pushover"
	whatsappclient "github.com/stocksense/stocksense/pkg/clients/whatsapp"
	"github.com/stocksense/stocksense/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New(cfg.Server.LogLevel))
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	location, err := cfg.Alerts.Location()
	if err != nil {
		baseLogger.Fatal("invalid timezone", zap.Error(err))
	}

	collector := metrics.NewCollector()
	store := dataset.NewStore()

	var sheetsRepo *sheets.GoogleSheetRepository
	if cfg.Sheets.Enabled() {
		sheetsRepo, err = sheets.NewGoogleSheetRepository(context.Background(), cfg.Sheets, baseLogger.Named("repo.sheets"))
		if err != nil {
			baseLogger.Fatal("failed to init sheets repository", zap.Error(err))
		}
	}

	var sqliteRepo *sqlite.Repository
	if cfg.Dataset.HasSource(config.SourceSQLite) {
		sqliteRepo, err = sqlite.Open(context.Background(), cfg.Dataset.SQLitePath, cfg.Dataset.SQLiteTable, baseLogger.Named("repo.sqlite"))
		if err != nil {
			baseLogger.Fatal("failed to init sqlite repository", zap.Error(err))
		}
		defer func() {
			if err := sqliteRepo.Close(); err != nil {
				baseLogger.Error("failed to close sqlite", zap.Error(err))
			}
		}()
	}

	sources := make([]dataset.Source, 0, len(cfg.Dataset.Sources))
	for _, name := range cfg.Dataset.Sources {
		switch name {
		case config.SourceUpload:
			sources = append(sources, store)
		case config.SourceSQLite:
			sources = append(sources, sqliteRepo)
		case config.SourceCSV:
			sources = append(sources, ingest.FileSource{Path: cfg.Dataset.CSVPath})
		case config.SourceSheets:
			sources = append(sources, sheets.NewSource(sheetsRepo, cfg.Sheets.DataRange, baseLogger.Named("repo.sheets")))
		}
	}
	loader := dataset.NewLoader(baseLogger.Named("dataset"), sources...)

	var history alertsvc.HistoryStore
	if cfg.MongoDB.Enabled() {
		connectCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		mongoRepo, err := mongodb.NewMongoDBRepository(connectCtx, cfg.MongoDB.URI, cfg.MongoDB.DBName)
		cancel()
		if err != nil {
			baseLogger.Fatal("failed to init mongodb repository", zap.Error(err))
		}
		defer func() {
			if err := mongoRepo.Close(context.Background()); err != nil {
				baseLogger.Error("failed to close mongodb connection", zap.Error(err))
			}
		}()
		history = mongoRepo
	} else {
		baseLogger.Warn("mongodb uri missing, alert history disabled")
	}

	alertService := alertsvc.NewService(loader, history, collector, location, baseLogger.Named("svc.alerts"))
	reportingService := reportingsvc.NewService(loader, baseLogger.Named("svc.reporting"))
	pricingService := pricingsvc.NewService(loader, baseLogger.Named("svc.pricing"))

	dispatcher := notify.NewDispatcher(buildSinks(cfg, sheetsRepo, baseLogger), cfg.Notify.Timeout, collector, baseLogger.Named("svc.notify"))
	baseLogger.Info("notification sinks configured", zap.Strings("sinks", dispatcher.Sinks()))

	defaults := models.AlertThresholds{
		StockThreshold:   cfg.Alerts.StockThreshold,
		ExpiryWindowDays: cfg.Alerts.ExpiryWindowDays,
	}

	var salesRepo handlers.SalesRepository
	if sqliteRepo != nil {
		salesRepo = sqliteRepo
	}

	engine := router.New(router.Handlers{
		Alerts:    handlers.NewAlertHandler(alertService, dispatcher, defaults, baseLogger.Named("handlers.alerts")),
		Datasets:  handlers.NewDatasetHandler(store, loader, baseLogger.Named("handlers.datasets")),
		Dashboard: handlers.NewDashboardHandler(reportingService, pricingService, baseLogger.Named("handlers.dashboard")),
		Sales:     handlers.NewSalesHandler(salesRepo, baseLogger.Named("handlers.sales")),
		Metrics:   collector.Handler(),
	}, baseLogger.Named("router"))

	sched := scheduler.NewScheduler(cfg.Alerts.CronSchedule, location, defaults, alertService, dispatcher, baseLogger.Named("scheduler"))
	if err := sched.Start(); err != nil {
		baseLogger.Fatal("failed to start scheduler", zap.Error(err))
	}
	defer sched.Stop()

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	baseLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}

func buildSinks(cfg *config.Config, sheetsRepo *sheets.GoogleSheetRepository, log *zap.Logger) []notify.Sink {
	var sinks []notify.Sink

	if cfg.Pushover.Enabled() {
		sinks = append(sinks, notify.NewPushoverSink(pushover.NewClient(cfg.Pushover, cfg.Notify.Timeout, cfg.Notify.Retries)))
	}
	if cfg.Email.Enabled() {
		sinks = append(sinks, notify.NewEmailSink(mailer.NewSMTPSender(cfg.Email)))
	}
	if cfg.WhatsApp.Enabled() {
		client := whatsappclient.NewClient(cfg.WhatsApp, cfg.Notify.Timeout, cfg.Notify.Retries)
		sinks = append(sinks, notify.NewWhatsAppSink(client, cfg.WhatsApp.Recipient))
	}
	if sheetsRepo != nil && cfg.Sheets.AlertLogRange != "" {
		sinks = append(sinks, notify.NewSheetLogSink(sheetsRepo, cfg.Sheets.AlertLogRange))
	}

	if len(sinks) == 0 {
		log.Warn("no notification sinks configured, alerts will only be served over http")
	}
	return sinks
}
