package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/stocksense/stocksense/internal/server/handlers"
)

// Handlers groups the HTTP handler adapters mounted by New.
type Handlers struct {
	Alerts    *handlers.AlertHandler
	Datasets  *handlers.DatasetHandler
	Dashboard *handlers.DashboardHandler
	Sales     *handlers.SalesHandler
	Metrics   http.Handler
}

// New wires the Gin engine with required routes and middlewares.
func New(h Handlers, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(zapLoggerMiddleware(logger))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if h.Metrics != nil {
		r.GET("/metrics", gin.WrapH(h.Metrics))
	}

	api := r.Group("/api")

	if h.Dashboard != nil {
		api.GET("/dashboard", h.Dashboard.Dashboard)
		api.POST("/pricing/suggest", h.Dashboard.SuggestPrice)
	}

	if h.Alerts != nil {
		api.GET("/alerts", h.Alerts.Evaluate)
		api.GET("/alerts/stock", h.Alerts.Stock)
		api.GET("/alerts/expiry", h.Alerts.Expiry)
		api.POST("/alerts/notify", h.Alerts.Notify)
		api.GET("/alerts/history", h.Alerts.History)
	}

	if h.Datasets != nil {
		api.POST("/datasets/upload", h.Datasets.Upload)
		api.DELETE("/datasets/upload", h.Datasets.ClearUpload)
		api.GET("/datasets/raw", h.Datasets.Raw)
	}

	if h.Sales != nil {
		api.POST("/sales", h.Sales.Record)
		api.GET("/sales", h.Sales.List)
	}

	if logger != nil {
		logger.Info("router initialized")
	}

	return r
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("request completed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()))
	}
}
