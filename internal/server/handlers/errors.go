package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/stocksense/stocksense/internal/repository/sqlite"
	"github.com/stocksense/stocksense/internal/service/alerts"
	"github.com/stocksense/stocksense/internal/service/dataset"
	"github.com/stocksense/stocksense/internal/service/pricing"
)

// writeError maps service errors onto HTTP status codes. Dataset loading
// failures, including persistent sources with missing columns, surface as
// ErrNoData.
func writeError(c *gin.Context, logger *zap.Logger, err error) {
	var cfgErr *alerts.ConfigurationError

	switch {
	case errors.As(err, &cfgErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, dataset.ErrNoData), errors.Is(err, sqlite.ErrProductNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, pricing.ErrInsufficientData):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, alerts.ErrHistoryDisabled):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	default:
		logger.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// queryInt reads an integer query parameter, returning fallback when absent.
func queryInt(c *gin.Context, key string, fallback int) (int, bool) {
	raw, ok := c.GetQuery(key)
	if !ok || raw == "" {
		return fallback, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": key + " must be an integer"})
		return 0, false
	}
	return n, true
}
