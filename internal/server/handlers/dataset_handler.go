package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/stocksense/stocksense/internal/ingest"
	"github.com/stocksense/stocksense/internal/service/dataset"
)

// DatasetLoader resolves the current dataset.
type DatasetLoader interface {
	Load(ctx context.Context) (dataset.Snapshot, error)
}

// DatasetHandler manages CSV uploads and raw data export.
type DatasetHandler struct {
	store  *dataset.Store
	loader DatasetLoader
	logger *zap.Logger
}

// NewDatasetHandler constructs the HTTP handler adapter.
func NewDatasetHandler(store *dataset.Store, loader DatasetLoader, logger *zap.Logger) *DatasetHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DatasetHandler{store: store, loader: loader, logger: logger}
}

// Upload parses a multipart CSV file and makes it the active dataset.
func (h *DatasetHandler) Upload(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "multipart field \"file\" is required"})
		return
	}

	f, err := header.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unable to read upload"})
		return
	}
	defer f.Close()

	result, err := ingest.ReadCSV(c.Request.Context(), f)
	if err != nil {
		h.logger.Warn("rejected dataset upload", zap.String("filename", header.Filename), zap.Error(err))
		if errors.Is(err, ingest.ErrMissingColumn) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		writeError(c, h.logger, err)
		return
	}
	if result.Success == 0 {
		h.logger.Warn("rejected dataset upload without usable rows",
			zap.String("filename", header.Filename),
			zap.Int("failed", result.Failed))
		c.JSON(http.StatusBadRequest, gin.H{
			"error":  "upload contains no usable rows",
			"result": result,
		})
		return
	}

	h.store.Replace(result.Records, header.Filename, time.Now())
	h.logger.Info("dataset uploaded",
		zap.String("filename", header.Filename),
		zap.Int("rows", result.Success),
		zap.Int("failed", result.Failed))

	c.JSON(http.StatusCreated, gin.H{
		"filename": header.Filename,
		"result":   result,
	})
}

// ClearUpload drops the uploaded dataset.
func (h *DatasetHandler) ClearUpload(c *gin.Context) {
	h.store.Clear()
	c.Status(http.StatusNoContent)
}

// Raw downloads the active dataset as CSV.
func (h *DatasetHandler) Raw(c *gin.Context) {
	snap, err := h.loader.Load(c.Request.Context())
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="dataset.csv"`)
	c.Header("Content-Type", "text/csv")
	c.Header("X-Dataset-Source", snap.Source)
	c.Status(http.StatusOK)
	if err := ingest.WriteCSV(c.Writer, snap.Records); err != nil {
		h.logger.Error("failed writing dataset csv", zap.Error(err))
	}
}
