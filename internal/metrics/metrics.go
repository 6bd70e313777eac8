package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/stocksense/stocksense/internal/domain/models"
)

// Collector owns the application's prometheus registry.
type Collector struct {
	registry       *prometheus.Registry
	evaluations    prometheus.Counter
	alertsEmitted  *prometheus.CounterVec
	recordsSkipped *prometheus.CounterVec
	notifications  *prometheus.CounterVec
	datasetRecords prometheus.Gauge
}

// NewCollector creates and registers all collectors on a private registry.
func NewCollector() *Collector {
	registry := prometheus.NewRegistry()

	c := &Collector{
		registry: registry,
		evaluations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "stocksense_alert_evaluations_total",
			Help: "Number of alert evaluation passes",
		}),
		alertsEmitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stocksense_alerts_emitted_total",
			Help: "Alerts produced by evaluation passes",
		}, []string{"kind"}),
		recordsSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stocksense_records_skipped_total",
			Help: "Records skipped because a field was missing or unparseable",
		}, []string{"field"}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stocksense_notifications_total",
			Help: "Notification deliveries by sink and status",
		}, []string{"sink", "status"}),
		datasetRecords: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "stocksense_dataset_records",
			Help: "Records in the most recently evaluated dataset",
		}),
	}

	registry.MustRegister(c.evaluations, c.alertsEmitted, c.recordsSkipped, c.notifications, c.datasetRecords)

	return c
}

// RecordEvaluation updates evaluation counters. Safe on a nil receiver.
func (c *Collector) RecordEvaluation(eval models.Evaluation, records int) {
	if c == nil {
		return
	}
	c.evaluations.Inc()
	c.datasetRecords.Set(float64(records))
	for _, a := range eval.StockAlerts {
		c.alertsEmitted.WithLabelValues(string(a.Kind)).Inc()
	}
	for _, a := range eval.ExpiryAlerts {
		c.alertsEmitted.WithLabelValues(string(a.Kind)).Inc()
	}
	c.recordsSkipped.WithLabelValues("stock_remaining").Add(float64(eval.SkippedStock))
	c.recordsSkipped.WithLabelValues("expiry_date").Add(float64(eval.SkippedExpiry))
}

// RecordDelivery counts one notification attempt. Safe on a nil receiver.
func (c *Collector) RecordDelivery(sink string, ok bool) {
	if c == nil {
		return
	}
	status := "ok"
	if !ok {
		status = "failed"
	}
	c.notifications.WithLabelValues(sink, status).Inc()
}

// Registry exposes the underlying registry, mainly for tests.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
