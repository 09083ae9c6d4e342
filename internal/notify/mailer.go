// Package notify delivers email notifications for pipeline events (new
// submissions, closings). Delivery is best-effort from the caller's point of
// view: failures come back as errors to surface, never as panics, and no
// pipeline mutation ever depends on a mail being sent.
package notify

import (
	"context"
	"fmt"
	"mime"
	"net/smtp"
	"strings"
)

// Mailer sends a single HTML mail. Abstracted so handlers and tests can
// substitute a fake without a live SMTP session.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// Message is one outbound notification.
type Message struct {
	Recipient string
	Subject   string
	// BodyHTML is the already-rendered HTML payload.
	BodyHTML string
}

// SMTPConfig carries the credentials and endpoint for SMTP delivery.
// Password is an app password supplied via configuration, never embedded.
type SMTPConfig struct {
	Host     string
	Port     int
	Sender   string
	Password string
}

// SMTPMailer delivers mail over SMTP with STARTTLS (plain auth).
type SMTPMailer struct {
	Config SMTPConfig

	// send is a test seam defaulting to smtp.SendMail.
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewSMTPMailer constructs a mailer bound to the given endpoint.
func NewSMTPMailer(cfg SMTPConfig) *SMTPMailer {
	return &SMTPMailer{Config: cfg, send: smtp.SendMail}
}

// Send renders the MIME envelope and hands it to the SMTP endpoint. The
// context is consulted before dialing; smtp.SendMail itself is not
// cancellable mid-session.
func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	recipient := strings.TrimSpace(msg.Recipient)
	if recipient == "" {
		return ErrNoRecipient
	}

	addr := fmt.Sprintf("%s:%d", m.Config.Host, m.Config.Port)
	auth := smtp.PlainAuth("", m.Config.Sender, m.Config.Password, m.Config.Host)

	sender := m.send
	if sender == nil {
		sender = smtp.SendMail
	}
	if err := sender(addr, auth, m.Config.Sender, []string{recipient}, Envelope(m.Config.Sender, recipient, msg)); err != nil {
		return fmt.Errorf("send mail to %s: %w", recipient, err)
	}
	return nil
}

// Envelope renders the raw RFC 5322 message with an HTML body.
func Envelope(from, to string, msg Message) []byte {
	var b strings.Builder
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + to + "\r\n")
	b.WriteString("Subject: " + mime.QEncoding.Encode("utf-8", msg.Subject) + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"utf-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(msg.BodyHTML)
	b.WriteString("\r\n")
	return []byte(b.String())
}
