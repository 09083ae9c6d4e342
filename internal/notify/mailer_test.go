package notify

import (
	"context"
	"errors"
	"net/smtp"
	"strings"
	"testing"
)

func TestEnvelope(t *testing.T) {
	raw := string(Envelope("pipeline@example.com", "presales@example.com", Message{
		Subject:  "Opportunity Update: Bank ABC",
		BodyHTML: "<p>moved to Proposal</p>",
	}))

	for _, want := range []string{
		"From: pipeline@example.com\r\n",
		"To: presales@example.com\r\n",
		"Subject: Opportunity Update: Bank ABC\r\n",
		"MIME-Version: 1.0\r\n",
		"Content-Type: text/html; charset=\"utf-8\"\r\n",
		"\r\n<p>moved to Proposal</p>\r\n",
	} {
		if !strings.Contains(raw, want) {
			t.Fatalf("envelope missing %q:\n%s", want, raw)
		}
	}
}

func TestEnvelope_EncodesNonASCIISubject(t *testing.T) {
	raw := string(Envelope("a@b", "c@d", Message{Subject: "Penawaran Réseau"}))
	if strings.Contains(raw, "Subject: Penawaran Réseau\r\n") {
		t.Fatalf("non-ASCII subject should be Q-encoded:\n%s", raw)
	}
	if !strings.Contains(raw, "=?utf-8?") {
		t.Fatalf("expected encoded-word subject:\n%s", raw)
	}
}

func TestSMTPMailer_Send(t *testing.T) {
	var gotAddr, gotFrom string
	var gotTo []string
	var gotMsg []byte

	m := NewSMTPMailer(SMTPConfig{Host: "smtp.example.com", Port: 587, Sender: "pipeline@example.com", Password: "app-pass"})
	m.send = func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotFrom, gotTo, gotMsg = addr, from, to, msg
		return nil
	}

	err := m.Send(context.Background(), Message{
		Recipient: "  presales@example.com  ",
		Subject:   "hi",
		BodyHTML:  "<b>x</b>",
	})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if gotAddr != "smtp.example.com:587" || gotFrom != "pipeline@example.com" {
		t.Fatalf("unexpected endpoint: addr=%q from=%q", gotAddr, gotFrom)
	}
	if len(gotTo) != 1 || gotTo[0] != "presales@example.com" {
		t.Fatalf("recipient not trimmed: %v", gotTo)
	}
	if !strings.Contains(string(gotMsg), "<b>x</b>") {
		t.Fatalf("body missing from envelope: %s", gotMsg)
	}
}

func TestSMTPMailer_Send_Errors(t *testing.T) {
	m := NewSMTPMailer(SMTPConfig{Host: "smtp.example.com", Port: 587, Sender: "s@x", Password: "p"})

	if err := m.Send(context.Background(), Message{Recipient: "   "}); !errors.Is(err, ErrNoRecipient) {
		t.Fatalf("expected ErrNoRecipient, got %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := m.Send(ctx, Message{Recipient: "a@b"}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context error, got %v", err)
	}

	m.send = func(string, smtp.Auth, string, []string, []byte) error {
		return errors.New("550 mailbox unavailable")
	}
	err := m.Send(context.Background(), Message{Recipient: "a@b"})
	if err == nil || !strings.Contains(err.Error(), "send mail to a@b") {
		t.Fatalf("expected wrapped send error, got %v", err)
	}
}
