package client

import (
	"context"
	"fmt"

	"charity-receipts/internal/config"

	"gopkg.in/gomail.v2"
)

// MailClient delivers a rendered receipt to a customer address. It reports
// success or failure; retry policy belongs to the caller.
type MailClient interface {
	Send(ctx context.Context, to, subject string, body []byte) error
}

type smtpMailClient struct {
	dialer *gomail.Dialer
	from   string
}

func NewSmtpMailClient(cfg *config.SMTP) MailClient {
	return &smtpMailClient{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
	}
}

func (c *smtpMailClient) Send(ctx context.Context, to, subject string, body []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", c.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", string(body))

	if err := c.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}

	return nil
}
