package ingest

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/stocksense/stocksense/internal/domain/models"
)

// Result summarizes one CSV ingestion.
type Result struct {
	Records []models.InventoryRecord `json:"-"`
	Total   int                      `json:"total"`
	Success int                      `json:"success"`
	Failed  int                      `json:"failed"`
	Errors  []string                 `json:"errors,omitempty"`
}

// ReadCSV parses a dataset CSV. A missing required column is fatal; bad rows
// are counted and skipped.
func ReadCSV(ctx context.Context, r io.Reader) (*Result, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	headers, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty file", ErrMissingColumn)
		}
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	columns := make([]string, len(headers))
	for i, h := range headers {
		columns[i] = NormalizeHeader(h)
	}
	if err := ValidateColumns(columns); err != nil {
		return nil, err
	}

	result := &Result{Records: make([]models.InventoryRecord, 0)}

	for {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		result.Total++
		line := result.Total + 1
		if err != nil {
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("line %d: %v", line, err))
			continue
		}

		fields := make(map[string]string, len(columns))
		for i, col := range columns {
			if i < len(row) {
				fields[col] = row[i]
			}
		}

		rec, err := NormalizeRow(fields)
		if err != nil {
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("line %d: %v", line, err))
			continue
		}

		result.Records = append(result.Records, rec)
		result.Success++
	}

	return result, nil
}

// FileSource loads the dataset from a CSV file on disk.
type FileSource struct {
	Path string
}

// Name identifies the source in logs and reports.
func (s FileSource) Name() string {
	return "csv"
}

// LoadRecords opens and parses the file on every call.
func (s FileSource) LoadRecords(ctx context.Context) ([]models.InventoryRecord, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("open dataset %s: %w", s.Path, err)
	}
	defer f.Close()

	result, err := ReadCSV(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("parse dataset %s: %w", s.Path, err)
	}
	return result.Records, nil
}
