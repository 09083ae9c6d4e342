// Notification HTTP handlers.
//
// Endpoint:
//   - POST /notifications/email  (send an HTML summary mail)
//
// Mail delivery is a side channel: it never participates in opportunity
// transactions, and the endpoint returns 503 when SMTP is not configured.
package handlers

import (
	"context"
	"errors"
	"fmt"
	"html"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/kurniawank/go-presales-backend/internal/notify"
	"github.com/kurniawank/go-presales-backend/internal/services"
)

// NotificationSender sends one HTML notification mail.
type NotificationSender interface {
	Send(ctx context.Context, msg notify.Message) error
}

// SendEmailRequest is the JSON payload for a notification mail. When
// OpportunityID is set and Body is empty, the body is rendered from the
// opportunity summary.
type SendEmailRequest struct {
	Recipient     string `json:"recipient" binding:"required,email" example:"presales@example.com"`
	Subject       string `json:"subject" example:"New Opportunity Submitted"`
	Body          string `json:"body" example:"<p>Check the pipeline board.</p>"`
	OpportunityID string `json:"opportunity_id" example:"ENT1Q30000"`
}

// SendEmail godoc
// @ID          sendEmail
// @Summary     Send a notification email
// @Description Sends an HTML mail to the recipient. With an opportunity_id and no body, the mail carries a rendered summary of that opportunity.
// @Tags        Notifications
// @Accept      json
// @Produce     json
//
// @Param       body  body  handlers.SendEmailRequest  true  "Notification payload"
//
// @Success     202  {object} object
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     404  {object} handlers.ErrorResponse "Opportunity not found"
// @Failure     503  {object} handlers.ErrorResponse "Notifications disabled"
// @Failure     500  {object} handlers.ErrorResponse "Send failed"
// @Router      /notifications/email [post]
func (h *Handlers) SendEmail(c *gin.Context) {
	if h.mailer == nil {
		fail(c, http.StatusServiceUnavailable, ErrCodeSendFailed, "notifications are disabled")
		return
	}

	var req SendEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "recipient (valid email) required")
		return
	}

	body := req.Body
	subject := strings.TrimSpace(req.Subject)
	if body == "" && req.OpportunityID != "" {
		sum, err := h.oppSvc.Summary(c.Request.Context(), req.OpportunityID)
		if err != nil {
			if errors.Is(err, services.ErrOpportunityNotFound) {
				fail(c, http.StatusNotFound, ErrCodeNotFound, "opportunity not found")
				return
			}
			fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
			return
		}
		body = summaryHTML(req.OpportunityID, sum.OpportunityName, sum.CompanyName, sum.Stage, sum.TotalItems)
		if subject == "" {
			subject = "Opportunity Update: " + sum.OpportunityName
		}
	}
	if subject == "" {
		subject = "Presales Pipeline Notification"
	}
	if body == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "body or opportunity_id required")
		return
	}

	err := h.mailer.Send(c.Request.Context(), notify.Message{
		Recipient: req.Recipient,
		Subject:   subject,
		BodyHTML:  body,
	})
	if err != nil {
		if errors.Is(err, notify.ErrNoRecipient) {
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeSendFailed, err.Error())
		return
	}
	ok(c, http.StatusAccepted, gin.H{"status": "sent"})
}

// summaryHTML renders the small opportunity table used as a default mail
// body. All dynamic values are escaped.
func summaryHTML(id, name, company, stageName string, lines int64) string {
	row := func(k, v string) string {
		return "<tr><td><b>" + html.EscapeString(k) + "</b></td><td>" + html.EscapeString(v) + "</td></tr>"
	}
	return "<table border=\"1\" cellpadding=\"6\" cellspacing=\"0\">" +
		row("Opportunity ID", id) +
		row("Opportunity", name) +
		row("Company", company) +
		row("Stage", stageName) +
		row("Line Items", fmt.Sprintf("%d", lines)) +
		"</table>"
}
