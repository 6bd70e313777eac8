package dataset

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/stocksense/stocksense/internal/domain/models"
)

// ErrNoData is returned when no configured source yields any records.
var ErrNoData = errors.New("no dataset available")

// Source yields inventory records from one backing store.
type Source interface {
	Name() string
	LoadRecords(ctx context.Context) ([]models.InventoryRecord, error)
}

// Snapshot is an immutable view of the dataset used for one evaluation pass.
type Snapshot struct {
	Records  []models.InventoryRecord
	Source   string
	LoadedAt time.Time
}

// Loader tries its sources in order and returns the first non-empty dataset.
type Loader struct {
	sources []Source
	logger  *zap.Logger
	now     func() time.Time
}

// NewLoader wires a fallback chain over sources.
func NewLoader(logger *zap.Logger, sources ...Source) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{sources: sources, logger: logger, now: time.Now}
}

// Load returns the first dataset any source can provide.
func (l *Loader) Load(ctx context.Context) (Snapshot, error) {
	var errs []error

	for _, src := range l.sources {
		records, err := src.LoadRecords(ctx)
		if err != nil {
			if !errors.Is(err, ErrNoData) {
				l.logger.Warn("dataset source failed, falling back", zap.String("source", src.Name()), zap.Error(err))
			}
			errs = append(errs, fmt.Errorf("%s: %w", src.Name(), err))
			continue
		}
		if len(records) == 0 {
			l.logger.Debug("dataset source empty", zap.String("source", src.Name()))
			continue
		}

		l.logger.Debug("dataset loaded", zap.String("source", src.Name()), zap.Int("records", len(records)))
		return Snapshot{Records: records, Source: src.Name(), LoadedAt: l.now()}, nil
	}

	if len(errs) == 0 {
		return Snapshot{}, ErrNoData
	}
	return Snapshot{}, errors.Join(append([]error{ErrNoData}, errs...)...)
}
