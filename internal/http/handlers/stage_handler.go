// Stage transition HTTP handlers.
//
// Endpoints:
//   - PUT /opportunities/{uid}/stage  (move all line items of an opportunity)
//   - GET /stages                     (selectable stage names)
package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kurniawank/go-presales-backend/internal/services"
	"github.com/kurniawank/go-presales-backend/internal/stage"
)

// TransitionRequest is the JSON payload for a stage transition. Date is the
// effective date in YYYY-MM-DD form and may be in the past (backdating);
// today is used when empty. ClosingReason is required iff the target stage
// is "Closed Won" or "Closed Lost" and must come from that outcome's
// category list.
type TransitionRequest struct {
	Stage         string `json:"stage" binding:"required,min=1" example:"Closed Won"`
	Notes         string `json:"notes" example:"PO received"`
	Date          string `json:"date" example:"2025-03-01"`
	ClosingReason string `json:"closing_reason" example:"Technical Solution Fit"`
}

// StageOptionsResponse lists the selectable target stages.
type StageOptionsResponse struct {
	Stages []string `json:"stages"`
}

// TransitionStage godoc
// @ID          transitionStage
// @Summary     Move an opportunity to another stage
// @Description Atomically moves every line item sharing the opportunity ID to the target stage and appends one audit entry. Closing stages require a closing reason from the matching category list.
// @Tags        Stages
// @Accept      json
// @Produce     json
//
// @Param       X-User-Name  header  string  false "Acting user name"  example(jane doe)
// @Param       uid          path    string  true  "Opportunity ID"    example(ENT1Q30000)
// @Param       body         body    handlers.TransitionRequest  true  "Transition payload"
//
// @Success     200  {object} services.TransitionResult
// @Failure     400  {object} handlers.ErrorResponse "Bad request or closing-reason violation"
// @Failure     404  {object} handlers.ErrorResponse "Opportunity not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /opportunities/{uid}/stage [put]
func (h *Handlers) TransitionStage(c *gin.Context) {
	var req TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	effective := time.Now().UTC()
	if d := strings.TrimSpace(req.Date); d != "" {
		parsed, err := time.Parse("2006-01-02", d)
		if err != nil {
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "date must be YYYY-MM-DD")
			return
		}
		effective = parsed
	}

	// The shared wildcard name keeps Gin's route tree consistent with the
	// line-item routes; the value here is the opportunity ID.
	res, err := h.stageSvc.Transition(c.Request.Context(), stage.Transition{
		OpportunityID: c.Param("uid"),
		Target:        req.Stage,
		Notes:         req.Notes,
		EffectiveDate: effective,
		Actor:         userName(c),
		ClosingReason: req.ClosingReason,
	})
	if err != nil {
		switch {
		case errors.Is(err, stage.ErrEmptyStage),
			errors.Is(err, stage.ErrClosingReasonRequired),
			errors.Is(err, stage.ErrUnknownClosingReason),
			errors.Is(err, stage.ErrReasonNotAllowed):
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
		case errors.Is(err, services.ErrOpportunityNotFound):
			fail(c, http.StatusNotFound, ErrCodeNotFound, "opportunity not found")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeTransitionFailed, err.Error())
		}
		return
	}
	ok(c, http.StatusOK, res)
}

// ListStages godoc
// @ID          listStages
// @Summary     List selectable stages
// @Description Returns the catalog-configured in-progress stage names with the fixed closing stages included.
// @Tags        Stages
// @Produce     json
//
// @Success     200  {object} handlers.StageOptionsResponse
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /stages [get]
func (h *Handlers) ListStages(c *gin.Context) {
	names, err := h.stageSvc.StageOptions(c.Request.Context())
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, StageOptionsResponse{Stages: names})
}
