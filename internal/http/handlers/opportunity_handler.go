// Opportunity HTTP handlers.
//
// This file exposes REST endpoints for opportunity resources:
//   - POST   /opportunities               (batch submit)
//   - GET    /opportunities               (list, paginated, ETag support)
//   - GET    /opportunities/{uid}         (single line item)
//   - GET    /opportunities/summary/{id}  (grouped preview)
//   - PUT    /opportunities/{uid}         (cost/notes update)
//   - PUT    /opportunities/{uid}/full    (full edit with ID regeneration)
//
// Handlers are transport-thin: they validate input, call application services,
// and translate results into HTTP responses (including conditional responses).
package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/kurniawank/go-presales-backend/internal/domain"
	"github.com/kurniawank/go-presales-backend/internal/http/middleware"
	"github.com/kurniawank/go-presales-backend/internal/repo"
	"github.com/kurniawank/go-presales-backend/internal/services"
	"github.com/kurniawank/go-presales-backend/internal/stage"
	"github.com/kurniawank/go-presales-backend/internal/utils"
)

//
// Service contracts (context-aware)
//

// OpportunityService defines opportunity lifecycle operations consumed by
// HTTP handlers.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type OpportunityService interface {
	// Submit creates a batch of line items under one freshly derived
	// opportunity ID.
	Submit(ctx context.Context, sub services.Submission) (*services.SubmissionResult, error)
	// Get returns one line item by UID.
	Get(ctx context.Context, uid string) (*domain.LineItem, error)
	// List returns all line items, most recent first.
	List(ctx context.Context) ([]domain.LineItem, error)
	// Summary returns the grouped preview of one opportunity.
	Summary(ctx context.Context, opportunityID string) (*repo.OpportunitySummary, error)
	// UpdateLine applies a cost/notes update to one line item.
	UpdateLine(ctx context.Context, uid string, cost float64, notes, user string) error
	// ApplyFullEdit reclassifies a line item and regenerates its identity.
	ApplyFullEdit(ctx context.Context, edit services.FullEdit) (*services.FullEditResult, error)
}

// StageService defines stage transition operations.
type StageService interface {
	// Transition moves every line item of an opportunity to the target stage.
	Transition(ctx context.Context, t stage.Transition) (*services.TransitionResult, error)
	// StageOptions returns the selectable stage names including terminals.
	StageOptions(ctx context.Context) ([]string, error)
}

// CatalogService defines read-only master data and audit log access.
type CatalogService interface {
	// Master runs one of the fixed master-data queries by action name.
	Master(ctx context.Context, action string) (any, error)
	// Activity returns the most recent audit entries.
	Activity(ctx context.Context) ([]domain.ActivityLog, error)
}

//
// Handler wiring
//

// Handlers groups HTTP endpoints for opportunities, stage transitions,
// master data, and notifications. It depends on abstract service interfaces
// to keep transport concerns separate from business logic.
type Handlers struct {
	oppSvc   OpportunityService
	stageSvc StageService
	catSvc   CatalogService
	mailer   NotificationSender

	// IdempotencyTTL bounds how long a submission's Idempotency-Key can be
	// replayed. Zero falls back to 24h.
	IdempotencyTTL time.Duration
}

// New constructs and returns a Handlers instance bound to the given services.
// mailer may be nil when notifications are disabled.
func New(oppSvc OpportunityService, stageSvc StageService, catSvc CatalogService, mailer NotificationSender) *Handlers {
	return &Handlers{oppSvc: oppSvc, stageSvc: stageSvc, catSvc: catSvc, mailer: mailer}
}

// userName extracts the acting user from Gin context (set by upstream
// middleware). If absent, it falls back to "X-User-Name" header (tests use
// it) and finally to the empty string, which services replace with their
// default actor. It never touches c.Request if it's nil.
func userName(c *gin.Context) string {
	if v, ok := c.Get("userName"); ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	if c != nil && c.Request != nil {
		if h := strings.TrimSpace(c.GetHeader("X-User-Name")); h != "" {
			return h
		}
	}
	return ""
}

// idemUser returns the identity scoping idempotency records. It mirrors the
// middleware's resolution, including its development fallback, so the lookup
// and the store agree on the same tuple.
func idemUser(c *gin.Context) string {
	if u := userName(c); u != "" {
		return u
	}
	return "demo-user"
}

// idempotencyKey returns the key validated and stashed by the idempotency
// middleware, falling back to the raw header when the route is exercised
// without it.
func idempotencyKey(c *gin.Context) string {
	if k, ok := middleware.GetIdempotencyKey(c); ok {
		return k
	}
	return strings.TrimSpace(c.GetHeader(middleware.HeaderIdempotencyKey))
}

// serviceDB exposes the underlying gorm handle when the concrete opportunity
// service is wired in; nil with fakes, which disables ETag stats and
// idempotency persistence.
func (h *Handlers) serviceDB() *gorm.DB {
	if svc, ok := h.oppSvc.(*services.OpportunityService); ok {
		return svc.DB
	}
	return nil
}

//
// DTOs
//

// ProductLineRequest is one product entry within a submission payload.
type ProductLineRequest struct {
	Pillar          string  `json:"pillar" example:"Network"`
	Solution        string  `json:"solution" example:"Wireless"`
	Service         string  `json:"service" example:"Managed Service"`
	Brand           string  `json:"brand" example:"Cisco"`
	Channel         string  `json:"channel" example:"Distributor"`
	DistributorName string  `json:"distributor_name" example:"PT Distributor"`
	Cost            float64 `json:"cost" example:"15000"`
	Notes           string  `json:"notes" example:"initial sizing"`
}

// SubmitOpportunityRequest is the JSON payload for a batch submission.
type SubmitOpportunityRequest struct {
	// OpportunityName is the stable human name that anchors the sequence
	// token (1-255 chars).
	OpportunityName  string               `json:"opportunity_name" binding:"required,min=1,max=255" example:"Bank ABC - WiFi - Jan 2025"`
	PresalesName     string               `json:"presales_name" example:"jane doe"`
	SalesGroupID     string               `json:"salesgroup_id" example:"ENT1"`
	SalesName        string               `json:"sales_name" example:"John Smith"`
	ResponsibleName  string               `json:"responsible_name" example:"Alice Lee"`
	StartDate        *time.Time           `json:"start_date" example:"2025-01-15T00:00:00Z"`
	CompanyName      string               `json:"company_name" example:"Bank ABC"`
	VerticalIndustry string               `json:"vertical_industry" example:"Banking"`
	Stage            string               `json:"stage" example:"Open"`
	StageNotes       string               `json:"stage_notes" example:"kickoff scheduled"`
	Lines            []ProductLineRequest `json:"lines" binding:"required,min=1"`
}

// UpdateLineRequest is the JSON payload for a cost/notes update.
type UpdateLineRequest struct {
	Cost  float64 `json:"cost" example:"18000"`
	Notes string  `json:"notes" example:"revised after survey"`
}

// FullEditRequest is the JSON payload for a reclassifying edit. Changing
// sales group or catalog fields regenerates opportunity, product, and UID
// identifiers; the response carries the new ones.
type FullEditRequest struct {
	SalesGroupID     string `json:"salesgroup_id" example:"ENT2"`
	SalesName        string `json:"sales_name" example:"John Smith"`
	ResponsibleName  string `json:"responsible_name" example:"Alice Lee"`
	Pillar           string `json:"pillar" example:"Network"`
	Solution         string `json:"solution" example:"Wireless"`
	Service          string `json:"service" example:"Managed Service"`
	Brand            string `json:"brand" example:"Cisco"`
	CompanyName      string `json:"company_name" example:"Bank ABC"`
	VerticalIndustry string `json:"vertical_industry" example:"Banking"`
	DistributorName  string `json:"distributor_name" example:"PT Distributor"`
}

// Pagination carries pagination metadata for list responses.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
}

// ListOpportunitiesResponse wraps a page of line items and pagination
// information.
type ListOpportunitiesResponse struct {
	Items      []domain.LineItem `json:"items"`
	Pagination Pagination        `json:"pagination"`
}

//
// Helpers
//

// clampPagination parses and bounds page and page_size query params to sane
// defaults and limits, returning (page, pageSize).
func clampPagination(c *gin.Context) (page, pageSize int) {
	const (
		defaultPage     = 1
		defaultPageSize = 20
		maxPageSize     = 100
	)
	page = utils.AtoiDefault(c.Query("page"), defaultPage)
	if page < 1 {
		page = 1
	}
	pageSize = utils.AtoiDefault(c.Query("page_size"), defaultPageSize)
	if pageSize < 1 {
		pageSize = 1
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return
}

//
// Handlers
//

// SubmitOpportunity godoc
// @ID          submitOpportunity
// @Summary     Submit a new opportunity
// @Description Creates one or more line items under a freshly derived opportunity ID and returns the minted identifiers.
// @Tags        Opportunities
// @Accept      json
// @Produce     json
//
// @Param       X-User-Name      header  string  false "Acting user name"  example(jane doe)
// @Param       Idempotency-Key  header  string  false "Safe-retry key: a repeated submission with the same key replays the stored result"
// @Param       body             body    handlers.SubmitOpportunityRequest  true  "Submission payload"
//
// @Success     201  {object}  services.SubmissionResult
// @Success     200  {object}  services.SubmissionResult  "Replay of a previously completed submission"
// @Header      200  {string}  Idempotency-Replayed "true when served from the idempotency store"
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     409  {object}  handlers.ErrorResponse  "Concurrent submission of the same name"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /opportunities [post]
func (h *Handlers) SubmitOpportunity(c *gin.Context) {
	var req SubmitOpportunityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	sub := services.Submission{
		OpportunityName:  strings.TrimSpace(req.OpportunityName),
		PresalesName:     req.PresalesName,
		SalesGroupID:     req.SalesGroupID,
		SalesName:        req.SalesName,
		ResponsibleName:  req.ResponsibleName,
		StartDate:        req.StartDate,
		CompanyName:      req.CompanyName,
		VerticalIndustry: req.VerticalIndustry,
		Stage:            req.Stage,
		StageNotes:       req.StageNotes,
	}
	if sub.PresalesName == "" {
		sub.PresalesName = userName(c)
	}
	for _, l := range req.Lines {
		sub.Lines = append(sub.Lines, services.ProductLine{
			Pillar:          l.Pillar,
			Solution:        l.Solution,
			Service:         l.Service,
			Brand:           l.Brand,
			Channel:         l.Channel,
			DistributorName: l.DistributorName,
			Cost:            l.Cost,
			Notes:           l.Notes,
		})
	}

	ctx := c.Request.Context()
	currentUser := idemUser(c)

	// Idempotency replay: a completed submission with this key is served back
	// instead of minting a duplicate batch under a new timestamp.
	idemKey := idempotencyKey(c)
	if idemKey != "" {
		if db := h.serviceDB(); db != nil {
			if rec, err := repo.GetIdempotency(ctx, db, currentUser, sub.OpportunityName, idemKey, time.Now().UTC()); err == nil && rec != nil {
				if items, err2 := repo.ListByOpportunityID(ctx, db, rec.OpportunityID); err2 == nil && len(items) > 0 {
					uids := make([]string, 0, len(items))
					for _, it := range items {
						uids = append(uids, it.UID)
					}
					c.Header("Idempotency-Replayed", "true")
					ok(c, http.StatusOK, services.SubmissionResult{OpportunityID: rec.OpportunityID, UIDs: uids})
					return
				}
			}
		}
	}

	res, err := h.oppSvc.Submit(ctx, sub)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrEmptyName), errors.Is(err, services.ErrNoLines):
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
		case errors.Is(err, repo.ErrSequenceConflict):
			fail(c, http.StatusConflict, ErrCodeConflict, "concurrent submission for the same opportunity name, retry")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeSubmitFailed, err.Error())
		}
		return
	}

	// Idempotency store: best effort, the submission itself already landed.
	if idemKey != "" {
		if db := h.serviceDB(); db != nil {
			ttl := h.IdempotencyTTL
			if ttl <= 0 {
				ttl = 24 * time.Hour
			}
			_, _ = repo.CreateIdempotency(ctx, db, currentUser, sub.OpportunityName, idemKey, res.OpportunityID, http.StatusCreated, ttl)
		}
	}
	ok(c, http.StatusCreated, res)
}

// ListOpportunities godoc
// @ID          listOpportunities
// @Summary     List opportunity line items (paginated)
// @Description Returns a page of line items, newest submission first. Supports weak ETag via If-None-Match and may return 304.
// @Tags        Opportunities
// @Produce     json
//
// @Param       If-None-Match  header  string  false "Return 304 if ETag matches"  example(W/\"abc123\")
// @Param       page           query   int     false "Page number"                  minimum(1) default(1)
// @Param       page_size      query   int     false "Items per page"               minimum(1) maximum(100) default(20)
//
// @Success     200  {object} handlers.ListOpportunitiesResponse
// @Header      200  {string} ETag "Weak ETag for current result"
// @Success     304  {string} string "Not Modified"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /opportunities [get]
func (h *Handlers) ListOpportunities(c *gin.Context) {
	ctx := c.Request.Context()
	page, pageSize := clampPagination(c)

	// ETag pre-check (best effort).
	if db := h.serviceDB(); db != nil {
		count, maxTS, err := repo.LineItemStats(ctx, db)
		if err == nil {
			var ts int64
			if maxTS != nil {
				ts = maxTS.Unix()
			}
			etag := fmt.Sprintf(`W/"opps:%d:%d"`, count, ts)
			c.Header("ETag", etag)
			if inm := c.GetHeader("If-None-Match"); inm != "" && inm == etag {
				c.Status(http.StatusNotModified)
				return
			}
		}
	}

	items, err := h.oppSvc.List(ctx)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}

	total := int64(len(items))
	start := (page - 1) * pageSize
	if start > len(items) {
		start = len(items)
	}
	end := start + pageSize
	if end > len(items) {
		end = len(items)
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	resp := ListOpportunitiesResponse{
		Items: items[start:end],
		Pagination: Pagination{
			Page:       page,
			PageSize:   pageSize,
			Total:      total,
			TotalPages: totalPages,
			HasNext:    page < totalPages,
		},
	}
	ok(c, http.StatusOK, resp)
}

// GetOpportunity godoc
// @ID          getOpportunity
// @Summary     Get one line item
// @Description Returns a single line item by its UID.
// @Tags        Opportunities
// @Produce     json
//
// @Param       uid  path  string  true  "Line item UID"  example(ENT1Q30000-NWSWS1CSC-17359000000)
//
// @Success     200  {object} domain.LineItem
// @Failure     404  {object} handlers.ErrorResponse "Line item not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /opportunities/{uid} [get]
func (h *Handlers) GetOpportunity(c *gin.Context) {
	item, err := h.oppSvc.Get(c.Request.Context(), c.Param("uid"))
	if err != nil {
		if errors.Is(err, services.ErrLineItemNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "line item not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, item)
}

// GetOpportunitySummary godoc
// @ID          getOpportunitySummary
// @Summary     Get opportunity summary
// @Description Returns the grouped preview (name, company, stage, line count) of one opportunity.
// @Tags        Opportunities
// @Produce     json
//
// @Param       id  path  string  true  "Opportunity ID"  example(ENT1Q30000)
//
// @Success     200  {object} repo.OpportunitySummary
// @Failure     404  {object} handlers.ErrorResponse "Opportunity not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /opportunities/summary/{id} [get]
func (h *Handlers) GetOpportunitySummary(c *gin.Context) {
	sum, err := h.oppSvc.Summary(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, services.ErrOpportunityNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "opportunity not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, sum)
}

// UpdateOpportunityLine godoc
// @ID          updateOpportunityLine
// @Summary     Update cost/notes of a line item
// @Description Applies a cost/notes update to one line item and records one audit entry per changed field.
// @Tags        Opportunities
// @Accept      json
// @Produce     json
//
// @Param       X-User-Name  header  string  false "Acting user name"  example(jane doe)
// @Param       uid          path    string  true  "Line item UID"
// @Param       body         body    handlers.UpdateLineRequest  true  "Update payload"
//
// @Success     204  {string} string "No Content"
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     404  {object} handlers.ErrorResponse "Line item not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /opportunities/{uid} [put]
func (h *Handlers) UpdateOpportunityLine(c *gin.Context) {
	var req UpdateLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	err := h.oppSvc.UpdateLine(c.Request.Context(), c.Param("uid"), req.Cost, req.Notes, userName(c))
	if err != nil {
		if errors.Is(err, services.ErrLineItemNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "line item not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeUpdateFailed, err.Error())
		return
	}
	noContent(c)
}

// FullEditOpportunityLine godoc
// @ID          fullEditOpportunityLine
// @Summary     Reclassify a line item and regenerate its IDs
// @Description Rewrites sales group, catalog, and company fields of a line item, rederiving opportunity ID, product ID, and UID. The old UID stops resolving.
// @Tags        Opportunities
// @Accept      json
// @Produce     json
//
// @Param       X-User-Name  header  string  false "Acting user name"  example(jane doe)
// @Param       uid          path    string  true  "Line item UID"
// @Param       body         body    handlers.FullEditRequest  true  "Full edit payload"
//
// @Success     200  {object} services.FullEditResult
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     404  {object} handlers.ErrorResponse "Line item not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /opportunities/{uid}/full [put]
func (h *Handlers) FullEditOpportunityLine(c *gin.Context) {
	var req FullEditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	res, err := h.oppSvc.ApplyFullEdit(c.Request.Context(), services.FullEdit{
		UID:              c.Param("uid"),
		SalesGroupID:     req.SalesGroupID,
		SalesName:        req.SalesName,
		ResponsibleName:  req.ResponsibleName,
		Pillar:           req.Pillar,
		Solution:         req.Solution,
		Service:          req.Service,
		Brand:            req.Brand,
		CompanyName:      req.CompanyName,
		VerticalIndustry: req.VerticalIndustry,
		DistributorName:  req.DistributorName,
		User:             userName(c),
	})
	if err != nil {
		if errors.Is(err, services.ErrLineItemNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "line item not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeUpdateFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, res)
}
