package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/stocksense/stocksense/internal/domain/models"
	"github.com/stocksense/stocksense/internal/scheduler"
)

// AlertService is the alert functionality the HTTP layer needs.
type AlertService interface {
	Run(ctx context.Context, thresholds models.AlertThresholds) (models.AlertReport, error)
	Archive(ctx context.Context, report models.AlertReport) error
	History(ctx context.Context, limit int64) ([]models.AlertReport, error)
}

// AlertHandler serves alert evaluation endpoints.
type AlertHandler struct {
	svc      AlertService
	notifier scheduler.Notifier
	defaults models.AlertThresholds
	logger   *zap.Logger
}

// NewAlertHandler constructs the HTTP handler adapter. notifier may be nil.
func NewAlertHandler(svc AlertService, notifier scheduler.Notifier, defaults models.AlertThresholds, logger *zap.Logger) *AlertHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AlertHandler{svc: svc, notifier: notifier, defaults: defaults, logger: logger}
}

func (h *AlertHandler) thresholds(c *gin.Context) (models.AlertThresholds, bool) {
	t := h.defaults
	var ok bool
	if t.StockThreshold, ok = queryInt(c, "stock_threshold", t.StockThreshold); !ok {
		return t, false
	}
	if t.ExpiryWindowDays, ok = queryInt(c, "expiry_days", t.ExpiryWindowDays); !ok {
		return t, false
	}
	return t, true
}

// Evaluate returns both alert lists for the current dataset.
func (h *AlertHandler) Evaluate(c *gin.Context) {
	t, ok := h.thresholds(c)
	if !ok {
		return
	}

	report, err := h.svc.Run(c.Request.Context(), t)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// Stock returns low stock alerts only.
func (h *AlertHandler) Stock(c *gin.Context) {
	t := h.defaults
	var ok bool
	if t.StockThreshold, ok = queryInt(c, "threshold", t.StockThreshold); !ok {
		return
	}

	report, err := h.svc.Run(c.Request.Context(), t)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"stock_threshold": t.StockThreshold,
		"alerts":          report.Evaluation.StockAlerts,
		"skipped":         report.Evaluation.SkippedStock,
	})
}

// Expiry returns expiring and expired alerts only.
func (h *AlertHandler) Expiry(c *gin.Context) {
	t := h.defaults
	var ok bool
	if t.ExpiryWindowDays, ok = queryInt(c, "days", t.ExpiryWindowDays); !ok {
		return
	}

	report, err := h.svc.Run(c.Request.Context(), t)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"expiry_window_days": t.ExpiryWindowDays,
		"evaluation_date":    report.Evaluation.EvaluatedAt.Format("2006-01-02"),
		"alerts":             report.Evaluation.ExpiryAlerts,
		"skipped":            report.Evaluation.SkippedExpiry,
	})
}

// Notify runs the alert job on demand and returns the archived report.
func (h *AlertHandler) Notify(c *gin.Context) {
	t, ok := h.thresholds(c)
	if !ok {
		return
	}

	report, err := scheduler.RunAlertJob(c.Request.Context(), t, h.svc, h.notifier, h.logger)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// History lists archived alert reports.
func (h *AlertHandler) History(c *gin.Context) {
	limit, ok := queryInt(c, "limit", 20)
	if !ok {
		return
	}

	reports, err := h.svc.History(c.Request.Context(), int64(limit))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"reports": reports})
}
