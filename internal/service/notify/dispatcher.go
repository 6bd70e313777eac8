package notify

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/stocksense/stocksense/internal/domain/models"
	"github.com/stocksense/stocksense/internal/metrics"
)

const notificationTitle = "StockSense alerts"

// Notification is what every sink receives for one alert run.
type Notification struct {
	Title      string
	Body       string
	Evaluation models.Evaluation
}

// Sink delivers notifications over one channel.
type Sink interface {
	Name() string
	Send(ctx context.Context, n Notification) error
}

// Dispatcher fans notifications out to all sinks. Sink failures are reported
// per delivery and never returned as an error.
type Dispatcher struct {
	sinks   []Sink
	timeout time.Duration
	metrics *metrics.Collector
	logger  *zap.Logger
}

// NewDispatcher wires a dispatcher. Each sink gets its own timeout per send.
func NewDispatcher(sinks []Sink, timeout time.Duration, collector *metrics.Collector, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{sinks: sinks, timeout: timeout, metrics: collector, logger: logger}
}

// Sinks returns the names of the configured sinks.
func (d *Dispatcher) Sinks() []string {
	names := make([]string, 0, len(d.sinks))
	for _, s := range d.sinks {
		names = append(names, s.Name())
	}
	return names
}

// Dispatch sends the report's alerts to every sink concurrently. Reports
// without alerts are not sent.
func (d *Dispatcher) Dispatch(ctx context.Context, report models.AlertReport) []models.Delivery {
	if report.Evaluation.Total == 0 || len(d.sinks) == 0 {
		return nil
	}

	n := BuildNotification(report.Evaluation)
	deliveries := make([]models.Delivery, len(d.sinks))

	var wg sync.WaitGroup
	for i, sink := range d.sinks {
		wg.Add(1)
		go func(i int, sink Sink) {
			defer wg.Done()
			deliveries[i] = d.send(ctx, sink, n)
		}(i, sink)
	}
	wg.Wait()

	return deliveries
}

func (d *Dispatcher) send(ctx context.Context, sink Sink, n Notification) models.Delivery {
	sendCtx := ctx
	if d.timeout > 0 {
		var cancel context.CancelFunc
		sendCtx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	delivery := models.Delivery{Sink: sink.Name(), OK: true}
	if err := sink.Send(sendCtx, n); err != nil {
		delivery.OK = false
		delivery.Error = err.Error()
		d.logger.Error("notification failed", zap.String("sink", sink.Name()), zap.Error(err))
	} else {
		d.logger.Info("notification sent", zap.String("sink", sink.Name()))
	}
	d.metrics.RecordDelivery(delivery.Sink, delivery.OK)

	return delivery
}

// BuildNotification renders a summary of eval, one alert per line.
func BuildNotification(eval models.Evaluation) Notification {
	var b strings.Builder
	fmt.Fprintf(&b, "%d alert(s) on %s: %d low stock, %d expiry.\n",
		eval.Total, eval.EvaluatedAt.Format("2006-01-02"), len(eval.StockAlerts), len(eval.ExpiryAlerts))
	for _, a := range eval.Alerts() {
		b.WriteString("- ")
		b.WriteString(a.Message)
		b.WriteString("\n")
	}

	return Notification{
		Title:      notificationTitle,
		Body:       strings.TrimSuffix(b.String(), "\n"),
		Evaluation: eval,
	}
}
