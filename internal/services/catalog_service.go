// Package services – CatalogService
//
// Thin read-only facade over the reference catalog: master-data lists keyed
// by the action names clients already use, and the audit-log view.
package services

import (
	"context"

	"gorm.io/gorm"

	"github.com/kurniawank/go-presales-backend/internal/domain"
	"github.com/kurniawank/go-presales-backend/internal/repo"
)

// CatalogService serves master data and the activity log.
type CatalogService struct {
	DB *gorm.DB
}

// Master runs one of the fixed master-data queries. Unknown actions return
// ErrUnknownAction so handlers can answer 400 rather than an empty 200.
func (s *CatalogService) Master(ctx context.Context, action string) (any, error) {
	data, err := repo.MasterData(ctx, s.DB, action)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, ErrUnknownAction
	}
	return data, nil
}

// Activity returns the most recent audit entries, newest first.
func (s *CatalogService) Activity(ctx context.Context) ([]domain.ActivityLog, error) {
	return repo.ListActivity(ctx, s.DB)
}
