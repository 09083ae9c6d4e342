package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/kurniawank/go-presales-backend/internal/notify"
	"github.com/kurniawank/go-presales-backend/internal/repo"
	"github.com/kurniawank/go-presales-backend/internal/services"
)

func TestSendEmail_DisabledWithoutMailer(t *testing.T) {
	r := newRouter(New(nil, nil, nil, nil))
	w := doJSON(t, r, http.MethodPost, "/notifications/email",
		`{"recipient": "a@example.com", "body": "<p>hi</p>"}`, nil)
	if w.Code != http.StatusServiceUnavailable || decodeErr(t, w).Code != ErrCodeSendFailed {
		t.Fatalf("status = %d body=%s", w.Code, w.Body.String())
	}
}

func TestSendEmail_Validation(t *testing.T) {
	mailer := &fakeMailer{send: func(context.Context, notify.Message) error { return nil }}
	r := newRouter(New(nil, nil, nil, mailer))

	// Recipient must be a valid email address.
	w := doJSON(t, r, http.MethodPost, "/notifications/email", `{"recipient": "not-an-email", "body": "x"}`, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("bad recipient: status = %d", w.Code)
	}

	// Neither a body nor an opportunity to render one from.
	w = doJSON(t, r, http.MethodPost, "/notifications/email", `{"recipient": "a@example.com"}`, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("empty body: status = %d body=%s", w.Code, w.Body.String())
	}
}

func TestSendEmail_ExplicitBody(t *testing.T) {
	var sent notify.Message
	mailer := &fakeMailer{send: func(_ context.Context, msg notify.Message) error {
		sent = msg
		return nil
	}}
	r := newRouter(New(nil, nil, nil, mailer))

	w := doJSON(t, r, http.MethodPost, "/notifications/email",
		`{"recipient": "a@example.com", "body": "<p>check the board</p>"}`, nil)
	if w.Code != http.StatusAccepted {
		t.Fatalf("status = %d body=%s", w.Code, w.Body.String())
	}
	if sent.Recipient != "a@example.com" || sent.BodyHTML != "<p>check the board</p>" {
		t.Fatalf("unexpected message: %+v", sent)
	}
	if sent.Subject != "Presales Pipeline Notification" {
		t.Fatalf("default subject missing: %q", sent.Subject)
	}
}

func TestSendEmail_SummaryBody(t *testing.T) {
	opp := &fakeOppSvc{summary: func(_ context.Context, id string) (*repo.OpportunitySummary, error) {
		if id != "ENT1Q30000" {
			return nil, services.ErrOpportunityNotFound
		}
		return &repo.OpportunitySummary{
			OpportunityName: "Bank <ABC> - WiFi",
			CompanyName:     "Bank ABC",
			Stage:           "Proposal",
			TotalItems:      2,
		}, nil
	}}
	var sent notify.Message
	mailer := &fakeMailer{send: func(_ context.Context, msg notify.Message) error {
		sent = msg
		return nil
	}}
	r := newRouter(New(opp, nil, nil, mailer))

	w := doJSON(t, r, http.MethodPost, "/notifications/email",
		`{"recipient": "a@example.com", "opportunity_id": "ENT1Q30000"}`, nil)
	if w.Code != http.StatusAccepted {
		t.Fatalf("status = %d body=%s", w.Code, w.Body.String())
	}
	if sent.Subject != "Opportunity Update: Bank <ABC> - WiFi" {
		t.Fatalf("unexpected subject: %q", sent.Subject)
	}
	// Rendered table carries the summary values, HTML-escaped.
	if !strings.Contains(sent.BodyHTML, "Bank &lt;ABC&gt; - WiFi") || !strings.Contains(sent.BodyHTML, "ENT1Q30000") {
		t.Fatalf("unexpected body: %q", sent.BodyHTML)
	}
	if strings.Contains(sent.BodyHTML, "<ABC>") {
		t.Fatalf("summary values must be escaped: %q", sent.BodyHTML)
	}

	w = doJSON(t, r, http.MethodPost, "/notifications/email",
		`{"recipient": "a@example.com", "opportunity_id": "NOPE"}`, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("unknown opportunity: status = %d", w.Code)
	}
}

func TestSendEmail_SendErrors(t *testing.T) {
	t.Run("no recipient after trim", func(t *testing.T) {
		mailer := &fakeMailer{send: func(context.Context, notify.Message) error {
			return notify.ErrNoRecipient
		}}
		r := newRouter(New(nil, nil, nil, mailer))
		w := doJSON(t, r, http.MethodPost, "/notifications/email",
			`{"recipient": "a@example.com", "body": "x"}`, nil)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("status = %d", w.Code)
		}
	})

	t.Run("smtp failure", func(t *testing.T) {
		mailer := &fakeMailer{send: func(context.Context, notify.Message) error {
			return errors.New("dial tcp: connection refused")
		}}
		r := newRouter(New(nil, nil, nil, mailer))
		w := doJSON(t, r, http.MethodPost, "/notifications/email",
			`{"recipient": "a@example.com", "body": "x"}`, nil)
		if w.Code != http.StatusInternalServerError || decodeErr(t, w).Code != ErrCodeSendFailed {
			t.Fatalf("status = %d body=%s", w.Code, w.Body.String())
		}
	})
}
