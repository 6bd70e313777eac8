package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/stocksense/stocksense/internal/service/pricing"
	"github.com/stocksense/stocksense/internal/service/reporting"
)

// ReportingService computes dashboard metrics.
type ReportingService interface {
	Dashboard(ctx context.Context, topN int) (reporting.Summary, error)
}

// PricingService suggests unit prices.
type PricingService interface {
	Suggest(ctx context.Context, quantity float64) (pricing.Suggestion, error)
}

// DashboardHandler serves dashboard metrics and price suggestions.
type DashboardHandler struct {
	reporting ReportingService
	pricing   PricingService
	logger    *zap.Logger
}

// NewDashboardHandler constructs the HTTP handler adapter.
func NewDashboardHandler(reporting ReportingService, pricing PricingService, logger *zap.Logger) *DashboardHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardHandler{reporting: reporting, pricing: pricing, logger: logger}
}

// Dashboard returns revenue, units sold, product count and top products.
func (h *DashboardHandler) Dashboard(c *gin.Context) {
	top, ok := queryInt(c, "top", 10)
	if !ok {
		return
	}

	summary, err := h.reporting.Dashboard(c.Request.Context(), top)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

type suggestPriceRequest struct {
	Quantity float64 `json:"quantity" binding:"required,gt=0"`
}

// SuggestPrice fits the price model and predicts a unit price.
func (h *DashboardHandler) SuggestPrice(c *gin.Context) {
	var req suggestPriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "quantity must be a positive number"})
		return
	}

	suggestion, err := h.pricing.Suggest(c.Request.Context(), req.Quantity)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, suggestion)
}
