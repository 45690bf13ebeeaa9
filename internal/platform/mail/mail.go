// Copyright (c) 2026 Trailgo. All rights reserved.

/*
Package mail provides outbound email delivery for the Trailgo application.

The package defines a small [Sender] interface so that services depending on
email delivery (the password-reset flow in particular) can be tested with an
in-memory recorder, while production wiring uses a plain SMTP transport.

Delivery failure is a first-class outcome: callers are expected to inspect
the returned error and roll back any state that was provisionally written on
the assumption the message would go out.
*/
package mail

import (
	"context"
	"fmt"
	"log/slog"
	"net/smtp"
	"strings"
)

// Message is a plain-text email ready for delivery.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Sender delivers a single message. Implementations must return a non-nil
// error whenever delivery cannot be confirmed as handed off to the transport.
type Sender interface {
	Send(ctx context.Context, message Message) error
}

// # SMTP Transport

// SMTPSender delivers mail over a plain SMTP connection.
type SMTPSender struct {
	addr string
	from string
	auth smtp.Auth
}

// SMTPConfig carries the connection settings for [NewSMTPSender].
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// NewSMTPSender builds an SMTP-backed sender.
func NewSMTPSender(cfg SMTPConfig) (*SMTPSender, error) {
	if cfg.Host == "" || cfg.Port == 0 {
		return nil, fmt.Errorf("mail: SMTP host and port are required")
	}
	if cfg.From == "" {
		return nil, fmt.Errorf("mail: sender address is required")
	}

	var auth smtp.Auth
	if cfg.Username != "" {
		auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	}

	return &SMTPSender{
		addr: fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		from: cfg.From,
		auth: auth,
	}, nil
}

// Send delivers the message synchronously. The context is honored only up to
// the point the SMTP dial begins; net/smtp does not support cancellation
// mid-transaction.
func (sender *SMTPSender) Send(ctx context.Context, message Message) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("mail: send aborted: %w", err)
	}

	var builder strings.Builder
	fmt.Fprintf(&builder, "From: %s\r\n", sender.from)
	fmt.Fprintf(&builder, "To: %s\r\n", message.To)
	fmt.Fprintf(&builder, "Subject: %s\r\n", message.Subject)
	builder.WriteString("MIME-Version: 1.0\r\n")
	builder.WriteString("Content-Type: text/plain; charset=\"utf-8\"\r\n")
	builder.WriteString("\r\n")
	builder.WriteString(message.Body)

	if err := smtp.SendMail(sender.addr, sender.auth, sender.from, []string{message.To}, []byte(builder.String())); err != nil {
		return fmt.Errorf("mail: SMTP delivery failed: %w", err)
	}

	return nil
}

// # Development Transport

// LogSender writes outbound mail to the structured log instead of delivering
// it. Used in development where no SMTP relay is configured.
type LogSender struct {
	logger *slog.Logger
}

// NewLogSender builds a logging-only sender.
func NewLogSender(logger *slog.Logger) *LogSender {
	return &LogSender{logger: logger}
}

// Send logs the message and reports success.
func (sender *LogSender) Send(ctx context.Context, message Message) error {
	sender.logger.InfoContext(ctx, "mail_logged_not_sent",
		slog.String("to", message.To),
		slog.String("subject", message.Subject),
		slog.String("body", message.Body),
	)
	return nil
}
