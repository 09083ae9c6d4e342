// Master data and audit log HTTP handlers.
//
// Endpoints:
//   - GET /master?action=...  (fixed master-data queries by action name)
//   - GET /activity           (recent audit entries, newest first)
package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/kurniawank/go-presales-backend/internal/services"
)

// GetMasterData godoc
// @ID          getMasterData
// @Summary     Query master data by action name
// @Description Runs one of the fixed reference queries: getPresales, getPAMMapping, getBrands, getPillars, getPresalesStages, getSalesGroups, getSalesNames, getResponsibles, getCompanies, getDistributors, getOpportunities, getActivityLog.
// @Tags        Master
// @Produce     json
//
// @Param       action  query  string  true  "Query name"  example(getBrands)
//
// @Success     200  {object} object
// @Failure     400  {object} handlers.ErrorResponse "Missing or unknown action"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /master [get]
func (h *Handlers) GetMasterData(c *gin.Context) {
	action := strings.TrimSpace(c.Query("action"))
	if action == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "action query parameter required")
		return
	}

	data, err := h.catSvc.Master(c.Request.Context(), action)
	if err != nil {
		if errors.Is(err, services.ErrUnknownAction) {
			fail(c, http.StatusBadRequest, ErrCodeUnknownAction, "unknown action: "+action)
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, data)
}

// GetActivity godoc
// @ID          getActivity
// @Summary     List recent audit entries
// @Description Returns the most recent activity log entries, newest first.
// @Tags        Master
// @Produce     json
//
// @Success     200  {array}  domain.ActivityLog
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /activity [get]
func (h *Handlers) GetActivity(c *gin.Context) {
	entries, err := h.catSvc.Activity(c.Request.Context())
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, entries)
}
