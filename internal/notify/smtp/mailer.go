// Package smtp delivers notifications as email over SMTP.
package smtp

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"healthstack/internal/platform/config"
	"healthstack/internal/notify"
)

// Mailer sends messages through a single SMTP endpoint. It holds no mutable
// state; each Send opens its own connection.
type Mailer struct {
	addr string
	auth smtp.Auth
	from string
}

// New constructs a Mailer from config. Returns nil if no host is configured
// (email channel disabled; callers fall back to a memory messenger).
func New(cfg config.SMTPConfig) *Mailer {
	if cfg.Host == "" {
		return nil
	}
	var auth smtp.Auth
	if cfg.Username != "" {
		auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	}
	return &Mailer{
		addr: fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		auth: auth,
		from: cfg.From,
	}
}

// Send delivers one message to all recipients in a single SMTP transaction.
func (m *Mailer) Send(ctx context.Context, msg notify.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(msg.Recipients) == 0 {
		return fmt.Errorf("message has no recipients")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", m.from)
	fmt.Fprintf(&b, "To: %s\r\n", strings.Join(msg.Recipients, ", "))
	fmt.Fprintf(&b, "Subject: %s\r\n", msg.Subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(msg.Body)

	if err := smtp.SendMail(m.addr, m.auth, m.from, msg.Recipients, []byte(b.String())); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}
