// Package services – StageService
//
// This file implements StageService, which applies pipeline stage
// transitions. Validation of the closing-category contract lives in the
// stage package; this service resolves the opportunity, performs the bulk
// update across every line item sharing the ID, and appends the audit entry
// inside one transaction, so a stage change can never land without its log
// entry or vice versa.
package services

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/kurniawank/go-presales-backend/internal/domain"
	"github.com/kurniawank/go-presales-backend/internal/repo"
	"github.com/kurniawank/go-presales-backend/internal/stage"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"golang.org/x/text/language"
)

// StageService validates and applies stage transitions for whole
// opportunities.
type StageService struct {
	DB *gorm.DB

	ActorLocale language.Tag
}

// TransitionResult reports an applied transition.
type TransitionResult struct {
	OpportunityID string `json:"opportunity_id"`
	OldStage      string `json:"old_stage"`
	NewStage      string `json:"new_stage"`
	LinesUpdated  int64  `json:"lines_updated"`
}

// Transition validates the request against the closing-category contract,
// then atomically moves every line item sharing the opportunity ID to the
// target stage and appends one audit entry. The entry is suppressed when the
// opportunity is already at the target stage (the rows still get the new
// notes/date). EffectiveDate is taken as given to support backdating.
func (s *StageService) Transition(ctx context.Context, t stage.Transition) (*TransitionResult, error) {
	tr := otel.Tracer("services/StageService")
	ctx, span := tr.Start(ctx, "Transition",
		trace.WithAttributes(
			attribute.String("opportunity.id", t.OpportunityID),
			attribute.String("stage.target", t.Target),
		),
	)
	defer span.End()

	if err := t.Validate(); err != nil {
		return nil, err
	}

	items, err := repo.ListByOpportunityID(ctx, s.DB, t.OpportunityID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, ErrOpportunityNotFound
	}
	oldStage := items[0].Stage

	actor := normalizeActor(s.ActorLocale, t.Actor)
	now := time.Now().UTC()
	effective := t.EffectiveDate

	var updated int64
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		fields := repo.TouchFields(now)
		fields["stage"] = t.Target
		fields["stage_notes"] = t.Notes
		fields["stage_changed_date"] = effective
		if stage.IsTerminal(t.Target) {
			fields["closing_reason"] = t.ClosingReason
			// The transition note doubles as the post-mortem record.
			fields["closing_notes"] = t.Notes
		}

		n, err := repo.UpdateByOpportunityID(ctx, tx, t.OpportunityID, fields)
		if err != nil {
			return err
		}
		updated = n

		if oldStage == t.Target {
			return nil
		}
		return repo.AppendActivity(ctx, tx, t.OpportunityID, actor,
			domain.ActionUpdate, "Stage Progression", oldStage, t.Summary(oldStage), now)
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOpportunityNotFound
		}
		return nil, err
	}

	return &TransitionResult{
		OpportunityID: t.OpportunityID,
		OldStage:      oldStage,
		NewStage:      t.Target,
		LinesUpdated:  updated,
	}, nil
}

// StageOptions returns the selectable target stages: the catalog-configured
// in-progress names with the fixed terminals injected, sorted.
func (s *StageService) StageOptions(ctx context.Context) ([]string, error) {
	names, err := repo.ListPresalesStages(ctx, s.DB)
	if err != nil {
		return nil, err
	}
	return stage.WithTerminals(names), nil
}
