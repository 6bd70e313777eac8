package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/stocksense/stocksense/internal/domain/models"
)

// SalesRepository records POS transactions.
type SalesRepository interface {
	RecordSale(ctx context.Context, sale models.Sale) (models.Sale, error)
	ListSales(ctx context.Context, limit int) ([]models.Sale, error)
}

// SalesHandler records sales against the SQLite dataset.
type SalesHandler struct {
	repo   SalesRepository
	logger *zap.Logger
}

// NewSalesHandler constructs the HTTP handler adapter. repo may be nil when
// SQLite is not configured.
func NewSalesHandler(repo SalesRepository, logger *zap.Logger) *SalesHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SalesHandler{repo: repo, logger: logger}
}

func (h *SalesHandler) available(c *gin.Context) bool {
	if h.repo == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "sales recording requires the sqlite source"})
		return false
	}
	return true
}

// Record stores a sale and decrements stock.
func (h *SalesHandler) Record(c *gin.Context) {
	if !h.available(c) {
		return
	}

	var sale models.Sale
	if err := c.ShouldBindJSON(&sale); err != nil {
		h.logger.Warn("invalid sale payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	saved, err := h.repo.RecordSale(c.Request.Context(), sale)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, saved)
}

// List returns recent sales.
func (h *SalesHandler) List(c *gin.Context) {
	if !h.available(c) {
		return
	}

	limit, ok := queryInt(c, "limit", 50)
	if !ok {
		return
	}

	sales, err := h.repo.ListSales(c.Request.Context(), limit)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"sales": sales})
}
