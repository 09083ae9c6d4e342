// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides read-only lookups over the reference
// catalog: classification taxonomies consulted when deriving product IDs and
// the master-data lists served to clients.
//
// Lookup semantics are exact-match, first-row-wins; the catalog is expected
// deduplicated. Misses are not errors: the zero value signals "not found"
// and the identity engine substitutes placeholders.
package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/kurniawank/go-presales-backend/internal/domain"
	"github.com/kurniawank/go-presales-backend/internal/identity"
)

// LookupCatalogParts resolves a (pillar, solution, service) name triple to
// its ID parts. A full miss returns the zero CatalogParts.
func LookupCatalogParts(ctx context.Context, db *gorm.DB, pillar, solution, service string) (identity.CatalogParts, error) {
	var row domain.MasterPillar
	err := db.WithContext(ctx).
		Where("pillar_name = ? AND solution_name = ? AND service_name = ?", pillar, solution, service).
		Limit(1).
		Find(&row).Error
	if err != nil {
		return identity.CatalogParts{}, err
	}
	return identity.CatalogParts{
		PillarID:   row.PillarID,
		SolutionID: row.SolutionID,
		ServiceID:  row.ServiceID,
	}, nil
}

// LookupBrandCode resolves a brand name to its short code, or "" on a miss.
func LookupBrandCode(ctx context.Context, db *gorm.DB, brandName string) (string, error) {
	if brandName == "" {
		return "", nil
	}
	var row domain.Brand
	err := db.WithContext(ctx).
		Where("brand_name = ?", brandName).
		Limit(1).
		Find(&row).Error
	if err != nil {
		return "", err
	}
	return row.BrandCode, nil
}

// ListPresalesStages returns the catalog-configured in-progress stage names
// for the presales pipeline, sorted by name.
func ListPresalesStages(ctx context.Context, db *gorm.DB) ([]string, error) {
	var names []string
	err := db.WithContext(ctx).
		Model(&domain.PipelineStage{}).
		Where("stage_type = ?", "PRESALES").
		Order("stage_name").
		Pluck("stage_name", &names).Error
	return names, err
}

// MasterData executes one of the fixed master-data list queries, keyed by
// the same action names the clients already use. Unknown actions return nil.
func MasterData(ctx context.Context, db *gorm.DB, action string) (any, error) {
	q := db.WithContext(ctx)
	switch action {
	case "getPresales":
		var out []domain.Presales
		return out, q.Order("presales_name").Find(&out).Error
	case "getPAMMapping":
		var out []domain.PAMMapping
		return out, q.Find(&out).Error
	case "getBrands":
		var out []domain.Brand
		return out, q.Where("brand_name IS NOT NULL").Order("brand_name, channel").Find(&out).Error
	case "getPillars":
		var out []domain.MasterPillar
		return out, q.Distinct("pillar_name", "solution_name", "service_name").
			Order("pillar_name, solution_name, service_name").Find(&out).Error
	case "getPresalesStages":
		names, err := ListPresalesStages(ctx, db)
		return names, err
	case "getSalesGroups":
		var out []string
		return out, q.Model(&domain.SalesName{}).Distinct().Order("sales_group").
			Pluck("sales_group", &out).Error
	case "getSalesNames":
		var out []domain.SalesName
		return out, q.Order("sales_name").Find(&out).Error
	case "getResponsibles":
		var out []string
		return out, q.Model(&domain.Responsible{}).Distinct().
			Where("responsible_name IS NOT NULL").
			Pluck("responsible_name", &out).Error
	case "getCompanies":
		var out []domain.Company
		return out, q.Distinct("company_name", "vertical_industry").
			Order("company_name").Find(&out).Error
	case "getDistributors":
		var out []string
		return out, q.Model(&domain.Distributor{}).Distinct().
			Where("distributor_name IS NOT NULL").
			Order("distributor_name").
			Pluck("distributor_name", &out).Error
	case "getOpportunities":
		var out []string
		return out, q.Model(&domain.LineItem{}).Distinct().
			Order("opportunity_name").
			Pluck("opportunity_name", &out).Error
	case "getActivityLog":
		return ListActivity(ctx, db)
	default:
		return nil, nil
	}
}
