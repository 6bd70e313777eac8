package dataset

import (
	"context"
	"sync"
	"time"

	"github.com/stocksense/stocksense/internal/domain/models"
)

// Store keeps the most recently uploaded dataset in memory.
type Store struct {
	mu         sync.RWMutex
	records    []models.InventoryRecord
	filename   string
	uploadedAt time.Time
}

// NewStore creates an empty upload store.
func NewStore() *Store {
	return &Store{}
}

// Replace swaps the current snapshot for records.
func (s *Store) Replace(records []models.InventoryRecord, filename string, at time.Time) {
	cp := make([]models.InventoryRecord, len(records))
	copy(cp, records)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = cp
	s.filename = filename
	s.uploadedAt = at
}

// Clear drops the uploaded snapshot so loaders fall back to persistent sources.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = nil
	s.filename = ""
	s.uploadedAt = time.Time{}
}

// Info reports the uploaded file name, row count and upload time.
func (s *Store) Info() (filename string, rows int, uploadedAt time.Time) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filename, len(s.records), s.uploadedAt
}

// Name identifies the store as a dataset source.
func (s *Store) Name() string {
	return "upload"
}

// LoadRecords returns a copy of the uploaded snapshot.
func (s *Store) LoadRecords(_ context.Context) ([]models.InventoryRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.records) == 0 {
		return nil, ErrNoData
	}
	cp := make([]models.InventoryRecord, len(s.records))
	copy(cp, s.records)
	return cp, nil
}
