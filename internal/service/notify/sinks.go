package notify

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"strconv"

	"github.com/stocksense/stocksense/internal/domain/models"
	"github.com/stocksense/stocksense/internal/repository/sheets"
	"github.com/stocksense/stocksense/pkg/clients/mailer"
	"github.com/stocksense/stocksense/pkg/clients/pushover"
	"github.com/stocksense/stocksense/pkg/clients/whatsapp"
)

const lowStockReportName = "low_stock_report.csv"

// PushoverSink sends one push per alert.
type PushoverSink struct {
	client pushover.Client
}

// NewPushoverSink wraps a Pushover client.
func NewPushoverSink(client pushover.Client) *PushoverSink {
	return &PushoverSink{client: client}
}

func (s *PushoverSink) Name() string { return "pushover" }

// Send pushes every alert and returns the combined errors.
func (s *PushoverSink) Send(ctx context.Context, n Notification) error {
	var errs []error
	for _, a := range n.Evaluation.Alerts() {
		msg := pushover.Message{Title: alertTitle(a.Kind), Body: a.Message}
		if a.Kind == models.AlertExpired {
			msg.Priority = 1
		}
		if err := s.client.Send(ctx, msg); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", a.ProductName, err))
		}
	}
	return errors.Join(errs...)
}

// EmailSink mails the low stock report as a CSV attachment.
type EmailSink struct {
	sender mailer.Sender
}

// NewEmailSink wraps an email sender.
func NewEmailSink(sender mailer.Sender) *EmailSink {
	return &EmailSink{sender: sender}
}

func (s *EmailSink) Name() string { return "email" }

// Send is a no-op when the run has no stock alerts.
func (s *EmailSink) Send(ctx context.Context, n Notification) error {
	stock := n.Evaluation.StockAlerts
	if len(stock) == 0 {
		return nil
	}

	report, err := LowStockCSV(stock)
	if err != nil {
		return err
	}

	body := fmt.Sprintf("Hi,\n\nPlease find attached the low stock report.\n\n%d products are below the threshold of %d.\n\nBest,\nStockSense",
		len(stock), n.Evaluation.Thresholds.StockThreshold)

	return s.sender.Send(ctx, mailer.Email{
		Subject:     "Low Stock Alert",
		Body:        body,
		Attachments: []mailer.Attachment{{Filename: lowStockReportName, Content: report}},
	})
}

// LowStockCSV renders stock alerts as product_name,stock_remaining rows.
func LowStockCSV(alerts []models.Alert) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"product_name", "stock_remaining"}); err != nil {
		return nil, err
	}
	for _, a := range alerts {
		if err := w.Write([]string{a.ProductName, strconv.Itoa(a.NumericDetail)}); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("render low stock csv: %w", err)
	}
	return buf.Bytes(), nil
}

// WhatsAppSink sends the summary text to a single recipient.
type WhatsAppSink struct {
	client    whatsapp.Client
	recipient string
}

// NewWhatsAppSink wraps a WhatsApp client.
func NewWhatsAppSink(client whatsapp.Client, recipient string) *WhatsAppSink {
	return &WhatsAppSink{client: client, recipient: recipient}
}

func (s *WhatsAppSink) Name() string { return "whatsapp" }

func (s *WhatsAppSink) Send(ctx context.Context, n Notification) error {
	_, err := s.client.SendTextMessage(ctx, whatsapp.SendTextMessageRequest{
		To:   s.recipient,
		Body: n.Title + "\n" + n.Body,
	})
	return err
}

// SheetLogSink appends every alert as a row to a spreadsheet range.
type SheetLogSink struct {
	repo       sheets.Repository
	sheetRange string
}

// NewSheetLogSink logs alerts to sheetRange.
func NewSheetLogSink(repo sheets.Repository, sheetRange string) *SheetLogSink {
	return &SheetLogSink{repo: repo, sheetRange: sheetRange}
}

func (s *SheetLogSink) Name() string { return "sheets" }

func (s *SheetLogSink) Send(ctx context.Context, n Notification) error {
	evaluatedAt := n.Evaluation.EvaluatedAt.Format("2006-01-02 15:04:05")
	for _, a := range n.Evaluation.Alerts() {
		row := []interface{}{evaluatedAt, string(a.Kind), a.ProductName, a.NumericDetail, a.Message}
		if err := s.repo.WriteRow(ctx, s.sheetRange, row); err != nil {
			return err
		}
	}
	return nil
}

func alertTitle(kind models.AlertKind) string {
	switch kind {
	case models.AlertStockLow:
		return "Restock alert"
	case models.AlertExpired:
		return "Expired stock"
	default:
		return "Expiry alert"
	}
}
