package handlers

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/kurniawank/go-presales-backend/internal/domain"
	"github.com/kurniawank/go-presales-backend/internal/notify"
	"github.com/kurniawank/go-presales-backend/internal/repo"
	"github.com/kurniawank/go-presales-backend/internal/services"
	"github.com/kurniawank/go-presales-backend/internal/stage"
)

func init() { gin.SetMode(gin.TestMode) }

// Function-field fakes for the service contracts. Unset fields panic, which
// makes a test that hits an unexpected dependency fail loudly.

type fakeOppSvc struct {
	submit       func(ctx context.Context, sub services.Submission) (*services.SubmissionResult, error)
	get          func(ctx context.Context, uid string) (*domain.LineItem, error)
	list         func(ctx context.Context) ([]domain.LineItem, error)
	summary      func(ctx context.Context, opportunityID string) (*repo.OpportunitySummary, error)
	updateLine   func(ctx context.Context, uid string, cost float64, notes, user string) error
	applyFullEdit func(ctx context.Context, edit services.FullEdit) (*services.FullEditResult, error)
}

func (f *fakeOppSvc) Submit(ctx context.Context, sub services.Submission) (*services.SubmissionResult, error) {
	return f.submit(ctx, sub)
}
func (f *fakeOppSvc) Get(ctx context.Context, uid string) (*domain.LineItem, error) {
	return f.get(ctx, uid)
}
func (f *fakeOppSvc) List(ctx context.Context) ([]domain.LineItem, error) { return f.list(ctx) }
func (f *fakeOppSvc) Summary(ctx context.Context, opportunityID string) (*repo.OpportunitySummary, error) {
	return f.summary(ctx, opportunityID)
}
func (f *fakeOppSvc) UpdateLine(ctx context.Context, uid string, cost float64, notes, user string) error {
	return f.updateLine(ctx, uid, cost, notes, user)
}
func (f *fakeOppSvc) ApplyFullEdit(ctx context.Context, edit services.FullEdit) (*services.FullEditResult, error) {
	return f.applyFullEdit(ctx, edit)
}

type fakeStageSvc struct {
	transition   func(ctx context.Context, t stage.Transition) (*services.TransitionResult, error)
	stageOptions func(ctx context.Context) ([]string, error)
}

func (f *fakeStageSvc) Transition(ctx context.Context, t stage.Transition) (*services.TransitionResult, error) {
	return f.transition(ctx, t)
}
func (f *fakeStageSvc) StageOptions(ctx context.Context) ([]string, error) {
	return f.stageOptions(ctx)
}

type fakeCatSvc struct {
	master   func(ctx context.Context, action string) (any, error)
	activity func(ctx context.Context) ([]domain.ActivityLog, error)
}

func (f *fakeCatSvc) Master(ctx context.Context, action string) (any, error) {
	return f.master(ctx, action)
}
func (f *fakeCatSvc) Activity(ctx context.Context) ([]domain.ActivityLog, error) {
	return f.activity(ctx)
}

type fakeMailer struct {
	send func(ctx context.Context, msg notify.Message) error
}

func (f *fakeMailer) Send(ctx context.Context, msg notify.Message) error { return f.send(ctx, msg) }

// newRouter wires the handlers onto the routes the real router uses, without
// any middleware.
func newRouter(h *Handlers) *gin.Engine {
	r := gin.New()
	r.POST("/opportunities", h.SubmitOpportunity)
	r.GET("/opportunities", h.ListOpportunities)
	r.GET("/opportunities/summary/:id", h.GetOpportunitySummary)
	r.GET("/opportunities/:uid", h.GetOpportunity)
	r.PUT("/opportunities/:uid", h.UpdateOpportunityLine)
	r.PUT("/opportunities/:uid/full", h.FullEditOpportunityLine)
	r.PUT("/opportunities/:uid/stage", h.TransitionStage)
	r.GET("/stages", h.ListStages)
	r.GET("/master", h.GetMasterData)
	r.GET("/activity", h.GetActivity)
	r.POST("/notifications/email", h.SendEmail)
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path, body string, hdr map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeErr(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var e ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &e); err != nil {
		t.Fatalf("decode error envelope: %v (%s)", err, w.Body.String())
	}
	return e
}
