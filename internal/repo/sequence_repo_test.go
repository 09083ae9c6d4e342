package repo

import (
	"context"
	"errors"
	"testing"

	"github.com/kurniawank/go-presales-backend/internal/domain"
)

func TestSequenceRepo_FindToken_EmptyAndFound(t *testing.T) {
	db := newRepoDB(t, &domain.SequenceEntry{})
	r := SequenceRepo{DB: db}
	ctx := context.Background()

	tok, err := r.FindToken(ctx, "Bank ABC - WiFi - Jan 2025")
	if err != nil || tok != "" {
		t.Fatalf("expected miss on empty ledger, got tok=%q err=%v", tok, err)
	}

	if err := r.InsertToken(ctx, "Bank ABC - WiFi - Jan 2025", "Q30000"); err != nil {
		t.Fatalf("InsertToken: %v", err)
	}
	tok, err = r.FindToken(ctx, "Bank ABC - WiFi - Jan 2025")
	if err != nil || tok != "Q30000" {
		t.Fatalf("expected Q30000, got %q err=%v", tok, err)
	}
}

func TestSequenceRepo_MaxToken(t *testing.T) {
	db := newRepoDB(t, &domain.SequenceEntry{})
	r := SequenceRepo{DB: db}
	ctx := context.Background()

	max, err := r.MaxToken(ctx)
	if err != nil || max != "" {
		t.Fatalf("empty ledger should give empty max, got %q err=%v", max, err)
	}

	for i, pair := range [][2]string{{"a", "Q30000"}, {"b", "Q30001"}, {"c", "Q30004"}} {
		if err := r.InsertToken(ctx, pair[0], pair[1]); err != nil {
			t.Fatalf("insert %d: %v", i, err)
		}
	}
	max, err = r.MaxToken(ctx)
	if err != nil || max != "Q30004" {
		t.Fatalf("expected max Q30004, got %q err=%v", max, err)
	}
}

func TestSequenceRepo_InsertToken_ConflictOnDuplicate(t *testing.T) {
	db := newRepoDB(t, &domain.SequenceEntry{})
	r := SequenceRepo{DB: db}
	ctx := context.Background()

	if err := r.InsertToken(ctx, "name-1", "Q30000"); err != nil {
		t.Fatalf("first insert: %v", err)
	}

	// Same token for a different name: primary key collision.
	if err := r.InsertToken(ctx, "name-2", "Q30000"); !errors.Is(err, ErrSequenceConflict) {
		t.Fatalf("expected ErrSequenceConflict on duplicate token, got %v", err)
	}
	// Same name with a fresh token: unique name index collision.
	if err := r.InsertToken(ctx, "name-1", "Q30001"); !errors.Is(err, ErrSequenceConflict) {
		t.Fatalf("expected ErrSequenceConflict on duplicate name, got %v", err)
	}
}

func TestSequenceRepo_Errors_NoTable(t *testing.T) {
	db := newRepoDB(t /* no migrations */)
	r := SequenceRepo{DB: db}
	ctx := context.Background()

	if _, err := r.FindToken(ctx, "n"); err == nil {
		t.Fatalf("expected FindToken error without table")
	}
	if _, err := r.MaxToken(ctx); err == nil {
		t.Fatalf("expected MaxToken error without table")
	}
	if err := r.InsertToken(ctx, "n", "Q30000"); err == nil || errors.Is(err, ErrSequenceConflict) {
		t.Fatalf("expected raw error without table, got %v", err)
	}
}
