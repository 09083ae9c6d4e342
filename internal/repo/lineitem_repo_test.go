package repo

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite" // pure-Go SQLite
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/kurniawank/go-presales-backend/internal/domain"
)

func newRepoDB(t *testing.T, migrate ...any) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), fmt.Sprintf("repo_test_%d.db", time.Now().UnixNano()))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	// Ensure the file handle is released before TempDir cleanup (Windows needs this).
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	if len(migrate) > 0 {
		if err := db.AutoMigrate(migrate...); err != nil {
			t.Fatalf("automigrate: %v", err)
		}
	}
	return db
}

func seedLine(t *testing.T, db *gorm.DB, uid, oppID, name string) *domain.LineItem {
	t.Helper()
	now := time.Now().UTC()
	item := &domain.LineItem{
		UID:             uid,
		OpportunityID:   oppID,
		ProductID:       "NWSWS1CSC",
		OpportunityName: name,
		CompanyName:     "Bank ABC",
		Stage:           domain.StageOpen,
		Cost:            1000,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := InsertLineItem(context.Background(), db, item); err != nil {
		t.Fatalf("seed line %s: %v", uid, err)
	}
	return item
}

func TestInsertLineItem_Error_NoTable(t *testing.T) {
	db := newRepoDB(t /* no migrations */)
	err := InsertLineItem(context.Background(), db, &domain.LineItem{UID: "x"})
	if err == nil {
		t.Fatalf("expected error inserting without table")
	}
}

func TestGetLineItem_FoundAndNotFound(t *testing.T) {
	db := newRepoDB(t, &domain.LineItem{})
	seedLine(t, db, "U1", "ENT1Q30000", "Bank ABC - WiFi - Jan 2025")

	got, err := GetLineItem(context.Background(), db, "U1")
	if err != nil {
		t.Fatalf("GetLineItem: %v", err)
	}
	if got.OpportunityID != "ENT1Q30000" || got.Stage != domain.StageOpen {
		t.Fatalf("unexpected item: %+v", got)
	}

	if _, err := GetLineItem(context.Background(), db, "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListLineItems_OrderNewestFirst(t *testing.T) {
	db := newRepoDB(t, &domain.LineItem{})

	old := seedLine(t, db, "U-old", "OPP1", "older")
	old.CreatedAt = time.Now().UTC().Add(-time.Hour)
	if err := db.Save(old).Error; err != nil {
		t.Fatalf("backdate: %v", err)
	}
	seedLine(t, db, "U-new", "OPP2", "newer")

	items, err := ListLineItems(context.Background(), db)
	if err != nil {
		t.Fatalf("ListLineItems: %v", err)
	}
	if len(items) != 2 || items[0].UID != "U-new" {
		t.Fatalf("expected newest first, got %+v", items)
	}
}

func TestListByOpportunityID_GroupsAndEmpty(t *testing.T) {
	db := newRepoDB(t, &domain.LineItem{})
	seedLine(t, db, "A-1", "ENT1Q30000", "n")
	seedLine(t, db, "A-2", "ENT1Q30000", "n")
	seedLine(t, db, "B-1", "ENT1Q30001", "m")

	items, err := ListByOpportunityID(context.Background(), db, "ENT1Q30000")
	if err != nil {
		t.Fatalf("ListByOpportunityID: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(items))
	}

	none, err := ListByOpportunityID(context.Background(), db, "missing")
	if err != nil || len(none) != 0 {
		t.Fatalf("unknown ID should yield empty slice, got %v err=%v", none, err)
	}
}

func TestUpdateLineFields_AppliesAndNotFound(t *testing.T) {
	db := newRepoDB(t, &domain.LineItem{})
	seedLine(t, db, "U1", "OPP", "n")

	now := time.Now().UTC()
	fields := TouchFields(now)
	fields["cost"] = 2500.0
	fields["notes"] = "revised"
	if err := UpdateLineFields(context.Background(), db, "U1", fields); err != nil {
		t.Fatalf("UpdateLineFields: %v", err)
	}

	got, _ := GetLineItem(context.Background(), db, "U1")
	if got.Cost != 2500.0 || got.Notes != "revised" {
		t.Fatalf("update not applied: %+v", got)
	}

	err := UpdateLineFields(context.Background(), db, "missing", map[string]any{"cost": 1.0})
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected not found for missing uid, got %v", err)
	}
}

func TestUpdateByOpportunityID_BulkAndNotFound(t *testing.T) {
	db := newRepoDB(t, &domain.LineItem{})
	seedLine(t, db, "A-1", "OPP", "n")
	seedLine(t, db, "A-2", "OPP", "n")

	n, err := UpdateByOpportunityID(context.Background(), db, "OPP", map[string]any{"stage": "Proposal"})
	if err != nil || n != 2 {
		t.Fatalf("expected 2 rows updated, got n=%d err=%v", n, err)
	}
	for _, uid := range []string{"A-1", "A-2"} {
		got, _ := GetLineItem(context.Background(), db, uid)
		if got.Stage != "Proposal" {
			t.Fatalf("line %s not moved: %+v", uid, got)
		}
	}

	if _, err := UpdateByOpportunityID(context.Background(), db, "missing", map[string]any{"stage": "x"}); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestReplaceIdentity_SwapsPrimaryKey(t *testing.T) {
	db := newRepoDB(t, &domain.LineItem{})
	seedLine(t, db, "OLD-UID", "OLDOPP", "n")

	fields := TouchFields(time.Now().UTC())
	fields["uid"] = "NEW-UID"
	fields["opportunity_id"] = "NEWOPP"
	fields["product_id"] = "NEWPROD"
	if err := ReplaceIdentity(context.Background(), db, "OLD-UID", fields); err != nil {
		t.Fatalf("ReplaceIdentity: %v", err)
	}

	// Old UID must stop resolving; new one carries the row.
	if _, err := GetLineItem(context.Background(), db, "OLD-UID"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("old uid should not resolve, got %v", err)
	}
	got, err := GetLineItem(context.Background(), db, "NEW-UID")
	if err != nil || got.OpportunityID != "NEWOPP" || got.ProductID != "NEWPROD" {
		t.Fatalf("new identity wrong: %+v err=%v", got, err)
	}

	if err := ReplaceIdentity(context.Background(), db, "OLD-UID", fields); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("replacing a gone uid should be not found, got %v", err)
	}
}

func TestGetOpportunitySummary_AggregatesAndNotFound(t *testing.T) {
	db := newRepoDB(t, &domain.LineItem{})
	seedLine(t, db, "A-1", "OPP", "Bank ABC - WiFi - Jan 2025")
	seedLine(t, db, "A-2", "OPP", "Bank ABC - WiFi - Jan 2025")

	sum, err := GetOpportunitySummary(context.Background(), db, "OPP")
	if err != nil {
		t.Fatalf("GetOpportunitySummary: %v", err)
	}
	if sum.TotalItems != 2 || sum.OpportunityName != "Bank ABC - WiFi - Jan 2025" || sum.CompanyName != "Bank ABC" {
		t.Fatalf("unexpected summary: %+v", sum)
	}

	if _, err := GetOpportunitySummary(context.Background(), db, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
