package repo

import (
	"context"
	"testing"
	"time"

	"github.com/kurniawank/go-presales-backend/internal/domain"
)

func TestAppendActivity_PersistsEntry(t *testing.T) {
	db := newRepoDB(t, &domain.ActivityLog{})
	ctx := context.Background()
	ts := time.Now().UTC()

	err := AppendActivity(ctx, db, "Bank ABC - WiFi - Jan 2025", "Jane Doe",
		domain.ActionCreate, "New Opportunity", "", "Created 2 lines. ID: ENT1Q30000", ts)
	if err != nil {
		t.Fatalf("AppendActivity: %v", err)
	}

	entries, err := ListActivity(ctx, db)
	if err != nil || len(entries) != 1 {
		t.Fatalf("ListActivity: %v len=%d", err, len(entries))
	}
	e := entries[0]
	if e.ID == "" || e.Action != domain.ActionCreate || e.Field != "New Opportunity" ||
		e.Subject != "Bank ABC - WiFi - Jan 2025" || e.UserName != "Jane Doe" {
		t.Fatalf("unexpected entry: %+v", e)
	}
}

func TestListActivity_NewestFirst(t *testing.T) {
	db := newRepoDB(t, &domain.ActivityLog{})
	ctx := context.Background()
	base := time.Now().UTC()

	for i, field := range []string{"first", "second", "third"} {
		if err := AppendActivity(ctx, db, "s", "u", domain.ActionUpdate, field, "", "", base.Add(time.Duration(i)*time.Minute)); err != nil {
			t.Fatalf("append %s: %v", field, err)
		}
	}

	entries, err := ListActivity(ctx, db)
	if err != nil || len(entries) != 3 {
		t.Fatalf("ListActivity: %v len=%d", err, len(entries))
	}
	if entries[0].Field != "third" || entries[2].Field != "first" {
		t.Fatalf("expected newest first, got %+v", entries)
	}
}

func TestListActivityBySubject_Filters(t *testing.T) {
	db := newRepoDB(t, &domain.ActivityLog{})
	ctx := context.Background()
	ts := time.Now().UTC()

	_ = AppendActivity(ctx, db, "opp-a", "u", domain.ActionUpdate, "Stage Progression", "Open", "x", ts)
	_ = AppendActivity(ctx, db, "opp-b", "u", domain.ActionUpdate, "Cost", "1", "2", ts)

	got, err := ListActivityBySubject(ctx, db, "opp-a")
	if err != nil || len(got) != 1 || got[0].Field != "Stage Progression" {
		t.Fatalf("subject filter wrong: %+v err=%v", got, err)
	}

	none, err := ListActivityBySubject(ctx, db, "opp-c")
	if err != nil || len(none) != 0 {
		t.Fatalf("unknown subject should be empty, got %+v err=%v", none, err)
	}
}

func TestAppendActivity_Error_NoTable(t *testing.T) {
	db := newRepoDB(t /* no migrations */)
	err := AppendActivity(context.Background(), db, "s", "u", domain.ActionCreate, "f", "", "", time.Now())
	if err == nil {
		t.Fatalf("expected error without table")
	}
}
