package mailer

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/wneessen/go-mail"

	"github.com/stocksense/stocksense/internal/config"
)

// Attachment is an in-memory file attached to an email.
type Attachment struct {
	Filename string
	Content  []byte
}

// Email is a plain text message with optional attachments.
type Email struct {
	Subject     string
	Body        string
	Attachments []Attachment
}

// Sender delivers emails.
type Sender interface {
	Send(ctx context.Context, email Email) error
}

// SMTPSender delivers through an implicit-TLS SMTP server.
type SMTPSender struct {
	cfg config.EmailConfig
}

// NewSMTPSender builds a sender from configuration.
func NewSMTPSender(cfg config.EmailConfig) *SMTPSender {
	return &SMTPSender{cfg: cfg}
}

// Send builds the message and dials the server once per call.
func (s *SMTPSender) Send(ctx context.Context, email Email) error {
	msg, err := s.buildMessage(email)
	if err != nil {
		return err
	}

	client, err := mail.NewClient(s.cfg.Host,
		mail.WithPort(s.cfg.Port),
		mail.WithSSL(),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(s.cfg.Username),
		mail.WithPassword(s.cfg.Password),
	)
	if err != nil {
		return fmt.Errorf("create smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	return nil
}

func (s *SMTPSender) buildMessage(email Email) (*mail.Msg, error) {
	msg := mail.NewMsg()
	if err := msg.From(s.cfg.From); err != nil {
		return nil, fmt.Errorf("invalid sender %q: %w", s.cfg.From, err)
	}
	if err := msg.To(s.cfg.To...); err != nil {
		return nil, fmt.Errorf("invalid recipients: %w", err)
	}
	msg.Subject(email.Subject)
	msg.SetBodyString(mail.TypeTextPlain, email.Body)
	for _, a := range email.Attachments {
		if err := attach(msg, a.Filename, bytes.NewReader(a.Content)); err != nil {
			return nil, err
		}
	}
	return msg, nil
}

func attach(msg *mail.Msg, name string, r io.Reader) error {
	if err := msg.AttachReader(name, r); err != nil {
		return fmt.Errorf("attach %s: %w", name, err)
	}
	return nil
}
