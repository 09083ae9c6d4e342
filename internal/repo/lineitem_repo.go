// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the LineItem
// model.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations.
// They follow the "thin repository" approach: no business logic, only CRUD
// persistence and query composition.
//
// Error semantics:
//   - When a line item is not found, functions return gorm.ErrRecordNotFound
//     (also exported here as ErrNotFound for convenience).
//   - On DB errors (constraint violations, connectivity issues, etc.),
//     the raw gorm error is propagated.
//
// Note on identity: a full edit replaces the primary key value in place
// (ReplaceIdentity). The old UID stops resolving the moment the update
// commits; callers must re-fetch by the new value.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/kurniawank/go-presales-backend/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// InsertLineItem inserts a single line item row. Timestamps are the caller's
// responsibility so every line of one batch carries the identical CreatedAt.
func InsertLineItem(ctx context.Context, db *gorm.DB, item *domain.LineItem) error {
	return db.WithContext(ctx).Create(item).Error
}

// GetLineItem fetches a single line item by its UID, or ErrNotFound.
func GetLineItem(ctx context.Context, db *gorm.DB, uid string) (*domain.LineItem, error) {
	var item domain.LineItem
	err := db.WithContext(ctx).
		Where("uid = ?", uid).
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// ListLineItems returns all line items ordered by creation time descending
// (most recent submission first).
func ListLineItems(ctx context.Context, db *gorm.DB) ([]domain.LineItem, error) {
	var out []domain.LineItem
	err := db.WithContext(ctx).
		Order("created_at desc").
		Find(&out).Error
	return out, err
}

// ListByOpportunityID returns every line item sharing an opportunity ID.
// An unknown ID yields an empty slice, not an error.
func ListByOpportunityID(ctx context.Context, db *gorm.DB, opportunityID string) ([]domain.LineItem, error) {
	var out []domain.LineItem
	err := db.WithContext(ctx).
		Where("opportunity_id = ?", opportunityID).
		Order("uid").
		Find(&out).Error
	return out, err
}

// UpdateLineFields applies a partial update to one line item by UID.
// If no row is affected it returns ErrNotFound.
func UpdateLineFields(ctx context.Context, db *gorm.DB, uid string, fields map[string]any) error {
	res := db.WithContext(ctx).
		Model(&domain.LineItem{}).
		Where("uid = ?", uid).
		Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// UpdateByOpportunityID applies a partial update to every line item sharing
// opportunityID and returns the number of rows touched. Zero rows means the
// opportunity does not exist: ErrNotFound.
func UpdateByOpportunityID(ctx context.Context, db *gorm.DB, opportunityID string, fields map[string]any) (int64, error) {
	res := db.WithContext(ctx).
		Model(&domain.LineItem{}).
		Where("opportunity_id = ?", opportunityID).
		Updates(fields)
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		return 0, gorm.ErrRecordNotFound
	}
	return res.RowsAffected, nil
}

// ReplaceIdentity swaps a line item's primary key and derived IDs in place
// (same row, new key) together with the reclassification fields of a full
// edit. The WHERE clause targets the old UID; zero affected rows means it no
// longer resolves.
func ReplaceIdentity(ctx context.Context, db *gorm.DB, oldUID string, fields map[string]any) error {
	res := db.WithContext(ctx).
		Model(&domain.LineItem{}).
		Where("uid = ?", oldUID).
		Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// OpportunitySummary is the grouped preview of one opportunity: shared
// header fields plus the number of line items carrying the ID.
type OpportunitySummary struct {
	OpportunityName string `json:"opportunity_name"`
	CompanyName     string `json:"company_name"`
	Stage           string `json:"stage"`
	StageNotes      string `json:"stage_notes"`
	ClosingReason   string `json:"closing_reason"`
	TotalItems      int64  `json:"total_items"`
}

// GetOpportunitySummary aggregates the line items sharing opportunityID, or
// returns ErrNotFound when none exist.
func GetOpportunitySummary(ctx context.Context, db *gorm.DB, opportunityID string) (*OpportunitySummary, error) {
	var s OpportunitySummary
	res := db.WithContext(ctx).
		Model(&domain.LineItem{}).
		Select("opportunity_name, company_name, stage, stage_notes, closing_reason, COUNT(uid) as total_items").
		Where("opportunity_id = ?", opportunityID).
		Group("opportunity_name, company_name, stage, stage_notes, closing_reason").
		Limit(1).
		Scan(&s)
	if res.Error != nil {
		return nil, res.Error
	}
	if s.TotalItems == 0 {
		return nil, ErrNotFound
	}
	return &s, nil
}

// TouchFields returns a partial-update map pre-populated with updated_at, so
// every mutation path bumps the row's timestamp the same way.
func TouchFields(now time.Time) map[string]any {
	return map[string]any{"updated_at": now}
}
