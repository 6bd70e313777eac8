package main

import (
	"context"
	"flag"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/stocksense/stocksense/internal/ingest"
	"github.com/stocksense/stocksense/internal/repository/sqlite"
	"github.com/stocksense/stocksense/pkg/logger"
)

var (
	csvPath  = flag.String("csv", "easyday_sales_dataset.csv", "Path to the dataset CSV")
	dbPath   = flag.String("db", "retail_data.db", "Path to the SQLite database")
	table    = flag.String("table", "sales_data", "Destination table")
	logLevel = flag.String("log-level", "info", "Log level")
)

func main() {
	flag.Parse()

	log := logger.Must(logger.New(*logLevel))
	defer func() { _ = log.Sync() }()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	f, err := os.Open(*csvPath)
	if err != nil {
		log.Fatal("failed to open csv", zap.String("path", *csvPath), zap.Error(err))
	}
	defer f.Close()

	result, err := ingest.ReadCSV(ctx, f)
	if err != nil {
		log.Fatal("failed to parse csv", zap.String("path", *csvPath), zap.Error(err))
	}
	for _, msg := range result.Errors {
		log.Warn("skipped row", zap.String("detail", msg))
	}

	repo, err := sqlite.Open(ctx, *dbPath, *table, log.Named("repo.sqlite"))
	if err != nil {
		log.Fatal("failed to open sqlite", zap.String("path", *dbPath), zap.Error(err))
	}
	defer repo.Close()

	n, err := repo.ImportRecords(ctx, result.Records)
	if err != nil {
		log.Fatal("import failed", zap.Error(err))
	}

	log.Info("import complete",
		zap.String("csv", *csvPath),
		zap.String("db", *dbPath),
		zap.String("table", *table),
		zap.Int("rows", n),
		zap.Int("failed", result.Failed))
}
