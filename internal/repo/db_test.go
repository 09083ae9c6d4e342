package repo

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/kurniawank/go-presales-backend/internal/domain"
)

func TestOpenSQLite_CreatesAndMigrates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pipeline.db")

	db, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	if err := AutoMigrate(db); err != nil {
		t.Fatalf("AutoMigrate: %v", err)
	}

	// Tables exist and accept writes.
	item := seedLine(t, db, "U1", "ENT1Q30000", "n")
	got, err := GetLineItem(context.Background(), db, item.UID)
	if err != nil || got.OpportunityID != "ENT1Q30000" {
		t.Fatalf("round trip after migrate: %+v err=%v", got, err)
	}
	if err := db.Create(&domain.PipelineStage{StageName: "Open", StageType: "PRESALES"}).Error; err != nil {
		t.Fatalf("catalog insert: %v", err)
	}
}

func TestOpenSQLite_MissingParentDir(t *testing.T) {
	_, err := OpenSQLite(filepath.Join(t.TempDir(), "nope", "db.sqlite"))
	if err == nil {
		t.Fatalf("expected error for missing parent directory")
	}
}
