// Package mail provides the SMTP mail transport.
package mail

import (
	"context"
	"fmt"
	"log/slog"
	"net/smtp"

	"github.com/domodwyer/mailyak/v3"
)

// Mailer sends plain-text mail over SMTP with PLAIN auth.
type Mailer struct {
	addr     string
	host     string
	username string
	password string
	from     string
}

// New creates a Mailer from the given configuration.
func New(cfg Config) *Mailer {
	return &Mailer{
		addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		host:     cfg.Host,
		username: cfg.Username,
		password: cfg.Password,
		from:     cfg.From,
	}
}

// Send delivers a single message and blocks until the SMTP exchange finishes
// or ctx is done. Delivery is awaited synchronously by callers before they
// respond, so a failure here surfaces on the triggering request.
func (m *Mailer) Send(ctx context.Context, to, subject, body string) error {
	msg := mailyak.New(m.addr, smtp.PlainAuth("", m.username, m.password, m.host))
	msg.To(to)
	msg.From(m.from)
	msg.Subject(subject)
	msg.Plain().Set(body)

	// mailyakのSendはコンテキストを取らないため、goroutineで実行してctxと競合させる
	done := make(chan error, 1)
	go func() {
		done <- msg.Send()
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-done:
		if err != nil {
			return fmt.Errorf("failed to send mail: %w", err)
		}
	}

	slog.Info("mail sent", "to", to, "subject", subject)
	return nil
}
