// Package services – OpportunityService
//
// This file implements OpportunityService, the application-level component
// that owns the lifecycle of opportunity line items: batch submission with
// identifier derivation, simple cost/notes updates, and the full edit that
// regenerates identity when classification dimensions change.
//
// Every mutation runs inside one transaction together with its audit
// entries: a batch submission appends exactly one summary entry, a field
// update appends one entry per actually-changed field, and a full edit
// appends one "ID Regeneration" entry.
//
// Observability: public methods are OpenTelemetry-instrumented; spans carry
// opportunity identifiers where applicable.
package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/kurniawank/go-presales-backend/internal/domain"
	"github.com/kurniawank/go-presales-backend/internal/identity"
	"github.com/kurniawank/go-presales-backend/internal/repo"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"golang.org/x/text/language"
)

// defaultActor is recorded when a mutation arrives without a user name.
const defaultActor = "Presales User"

// OpportunityService coordinates identifier derivation, persistence, and
// audit logging for opportunity line items.
type OpportunityService struct {
	DB *gorm.DB

	// ActorLocale selects the casing rules used to normalize recorded
	// user names; English when unset.
	ActorLocale language.Tag
}

// ProductLine is one product/solution entry within a submission.
type ProductLine struct {
	Pillar          string
	Solution        string
	Service         string
	Brand           string
	Channel         string
	DistributorName string
	Cost            float64
	Notes           string
}

// Submission is a batch create request: shared header fields plus one or
// more product lines that will all carry the same opportunity ID.
type Submission struct {
	OpportunityName  string
	PresalesName     string
	SalesGroupID     string
	SalesName        string
	ResponsibleName  string
	StartDate        *time.Time
	CompanyName      string
	VerticalIndustry string
	Stage            string
	StageNotes       string
	Lines            []ProductLine
}

// SubmissionResult reports the identifiers minted for one submission.
type SubmissionResult struct {
	OpportunityID string   `json:"opportunity_id"`
	UIDs          []string `json:"uids"`
}

// Submit resolves the sequence token for the opportunity name (minting one
// on first use), derives an opportunity ID and per-line product IDs/UIDs,
// and inserts the whole batch plus one summary audit entry atomically.
//
// Every line shares the batch timestamp; only the 0-based index differs in
// the UID, so lines submitted together stay reconstructable. On a sequence
// conflict (concurrent first submission of the same name) the transaction
// rolls back and repo.ErrSequenceConflict is returned; the whole call is
// safe to retry.
func (s *OpportunityService) Submit(ctx context.Context, sub Submission) (*SubmissionResult, error) {
	tr := otel.Tracer("services/OpportunityService")
	ctx, span := tr.Start(ctx, "Submit",
		trace.WithAttributes(attribute.String("opportunity.name", sub.OpportunityName)),
	)
	defer span.End()

	name := strings.TrimSpace(sub.OpportunityName)
	if name == "" {
		return nil, ErrEmptyName
	}
	if len(sub.Lines) == 0 {
		return nil, ErrNoLines
	}

	initialStage := strings.TrimSpace(sub.Stage)
	if initialStage == "" {
		initialStage = domain.StageOpen
	}
	actor := s.normalizeActor(sub.PresalesName)

	batchTS := time.Now().UTC()
	var result SubmissionResult

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		token, err := identity.ResolveSequenceToken(ctx, repo.SequenceRepo{DB: tx}, name)
		if err != nil {
			return err
		}
		oppID := identity.BuildOpportunityID(sub.SalesGroupID, token)
		result.OpportunityID = oppID

		for i, line := range sub.Lines {
			parts, err := repo.LookupCatalogParts(ctx, tx, line.Pillar, line.Solution, line.Service)
			if err != nil {
				return err
			}
			brandCode, err := repo.LookupBrandCode(ctx, tx, line.Brand)
			if err != nil {
				return err
			}
			productID := identity.BuildProductID(parts, brandCode)
			uid := identity.BuildUID(oppID, productID, batchTS, i)

			item := &domain.LineItem{
				UID:              uid,
				OpportunityID:    oppID,
				ProductID:        productID,
				PresalesName:     sub.PresalesName,
				SalesGroupID:     sub.SalesGroupID,
				SalesName:        sub.SalesName,
				ResponsibleName:  sub.ResponsibleName,
				OpportunityName:  name,
				StartDate:        sub.StartDate,
				CompanyName:      sub.CompanyName,
				VerticalIndustry: sub.VerticalIndustry,
				Pillar:           line.Pillar,
				Solution:         line.Solution,
				Service:          line.Service,
				Brand:            line.Brand,
				Channel:          line.Channel,
				DistributorName:  line.DistributorName,
				Cost:             line.Cost,
				Notes:            line.Notes,
				Stage:            initialStage,
				StageNotes:       sub.StageNotes,
				CreatedAt:        batchTS,
				UpdatedAt:        batchTS,
			}
			if err := repo.InsertLineItem(ctx, tx, item); err != nil {
				return err
			}
			result.UIDs = append(result.UIDs, uid)
		}

		// One summary entry per batch, not one per line.
		summary := "Created " + itoa(len(sub.Lines)) + " lines. ID: " + oppID
		return repo.AppendActivity(ctx, tx, name, actor,
			domain.ActionCreate, "New Opportunity", "", summary, batchTS)
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// Get returns one line item by UID.
func (s *OpportunityService) Get(ctx context.Context, uid string) (*domain.LineItem, error) {
	item, err := repo.GetLineItem(ctx, s.DB, uid)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrLineItemNotFound
	}
	return item, err
}

// List returns all line items, most recent submission first.
func (s *OpportunityService) List(ctx context.Context) ([]domain.LineItem, error) {
	return repo.ListLineItems(ctx, s.DB)
}

// Summary returns the grouped preview of one opportunity.
func (s *OpportunityService) Summary(ctx context.Context, opportunityID string) (*repo.OpportunitySummary, error) {
	sum, err := repo.GetOpportunitySummary(ctx, s.DB, opportunityID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrOpportunityNotFound
	}
	return sum, err
}

// UpdateLine applies a cost/notes update to one line item, appending one
// audit entry per field whose value actually changed. Requesting an update
// that changes nothing writes no audit entries at all.
func (s *OpportunityService) UpdateLine(ctx context.Context, uid string, cost float64, notes, user string) error {
	tr := otel.Tracer("services/OpportunityService")
	ctx, span := tr.Start(ctx, "UpdateLine",
		trace.WithAttributes(attribute.String("line.uid", uid)),
	)
	defer span.End()

	old, err := repo.GetLineItem(ctx, s.DB, uid)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrLineItemNotFound
		}
		return err
	}

	actor := s.normalizeActor(user)
	now := time.Now().UTC()

	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		fields := repo.TouchFields(now)
		fields["cost"] = cost
		fields["notes"] = notes
		if err := repo.UpdateLineFields(ctx, tx, uid, fields); err != nil {
			return err
		}

		if old.Cost != cost {
			if err := repo.AppendActivity(ctx, tx, old.OpportunityName, actor,
				domain.ActionUpdate, "Cost", ftoa(old.Cost), ftoa(cost), now); err != nil {
				return err
			}
		}
		if old.Notes != notes {
			if err := repo.AppendActivity(ctx, tx, old.OpportunityName, actor,
				domain.ActionUpdate, "Notes", old.Notes, notes, now); err != nil {
				return err
			}
		}
		return nil
	})
}

// FullEdit reclassifies one line item: sales group/name, responsible,
// pillar/solution/service/brand, company, vertical, and distributor.
type FullEdit struct {
	UID              string
	SalesGroupID     string
	SalesName        string
	ResponsibleName  string
	Pillar           string
	Solution         string
	Service          string
	Brand            string
	CompanyName      string
	VerticalIndustry string
	DistributorName  string
	User             string
}

// FullEditResult carries the regenerated identity.
type FullEditResult struct {
	UID           string `json:"uid"`
	OpportunityID string `json:"opportunity_id"`
	ProductID     string `json:"product_id"`
}

// ApplyFullEdit recomputes the line's identity from the new classification
// and replaces it in place: the sequence token is recovered from the ledger
// (or extracted from the legacy ID when the ledger misses), the opportunity
// ID is rebuilt with the new sales group, the product ID is rebuilt from the
// new catalog selection, and the UID keeps its original temporal segment.
// The old UID stops resolving once the transaction commits.
func (s *OpportunityService) ApplyFullEdit(ctx context.Context, edit FullEdit) (*FullEditResult, error) {
	tr := otel.Tracer("services/OpportunityService")
	ctx, span := tr.Start(ctx, "ApplyFullEdit",
		trace.WithAttributes(attribute.String("line.uid", edit.UID)),
	)
	defer span.End()

	old, err := repo.GetLineItem(ctx, s.DB, edit.UID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLineItemNotFound
		}
		return nil, err
	}

	actor := s.normalizeActor(edit.User)
	now := time.Now().UTC()
	var result FullEditResult

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Token from the ledger when possible, legacy extraction otherwise.
		token, err := repo.SequenceRepo{DB: tx}.FindToken(ctx, old.OpportunityName)
		if err != nil {
			return err
		}
		if token == "" {
			token = identity.ExtractToken(old.OpportunityID)
		}
		newOppID := identity.BuildOpportunityID(edit.SalesGroupID, token)

		parts, err := repo.LookupCatalogParts(ctx, tx, edit.Pillar, edit.Solution, edit.Service)
		if err != nil {
			return err
		}
		brandCode, err := repo.LookupBrandCode(ctx, tx, edit.Brand)
		if err != nil {
			return err
		}
		newProductID := identity.BuildProductID(parts, brandCode)
		newUID := identity.RegenerateUID(old.UID, newOppID, newProductID, now)

		fields := repo.TouchFields(now)
		fields["uid"] = newUID
		fields["opportunity_id"] = newOppID
		fields["product_id"] = newProductID
		fields["sales_group_id"] = edit.SalesGroupID
		fields["sales_name"] = edit.SalesName
		fields["responsible_name"] = edit.ResponsibleName
		fields["pillar"] = edit.Pillar
		fields["solution"] = edit.Solution
		fields["service"] = edit.Service
		fields["brand"] = edit.Brand
		fields["company_name"] = edit.CompanyName
		fields["vertical_industry"] = edit.VerticalIndustry
		fields["distributor_name"] = edit.DistributorName
		if err := repo.ReplaceIdentity(ctx, tx, old.UID, fields); err != nil {
			return err
		}

		msg := "Update Info & Regenerate IDs. OppID: " + old.OpportunityID + " -> " + newOppID +
			". UID: " + old.UID + " -> " + newUID
		if err := repo.AppendActivity(ctx, tx, old.OpportunityName, actor,
			domain.ActionUpdate, "ID Regeneration", "", msg, now); err != nil {
			return err
		}

		result = FullEditResult{UID: newUID, OpportunityID: newOppID, ProductID: newProductID}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (s *OpportunityService) normalizeActor(name string) string {
	return normalizeActor(s.ActorLocale, name)
}
