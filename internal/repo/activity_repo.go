// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides the append-only activity log.
//
// Entries are immutable: there is deliberately no update or delete function
// here, and the listing is capped to keep the audit endpoint bounded.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kurniawank/go-presales-backend/internal/domain"
)

// maxActivityRows caps ListActivity, mirroring the audit view's window.
const maxActivityRows = 1000

// AppendActivity inserts one immutable audit entry.
func AppendActivity(ctx context.Context, db *gorm.DB, subject, userName, action, field, oldValue, newValue string, ts time.Time) error {
	entry := &domain.ActivityLog{
		ID:        uuid.NewString(),
		Timestamp: ts,
		Subject:   subject,
		UserName:  userName,
		Action:    action,
		Field:     field,
		OldValue:  oldValue,
		NewValue:  newValue,
	}
	return db.WithContext(ctx).Create(entry).Error
}

// ListActivity returns the most recent audit entries, newest first, capped
// at maxActivityRows.
func ListActivity(ctx context.Context, db *gorm.DB) ([]domain.ActivityLog, error) {
	var out []domain.ActivityLog
	err := db.WithContext(ctx).
		Order("timestamp desc").
		Limit(maxActivityRows).
		Find(&out).Error
	return out, err
}

// ListActivityBySubject returns the audit trail for one opportunity name or
// ID, newest first.
func ListActivityBySubject(ctx context.Context, db *gorm.DB, subject string) ([]domain.ActivityLog, error) {
	var out []domain.ActivityLog
	err := db.WithContext(ctx).
		Where("opportunity_name = ?", subject).
		Order("timestamp desc").
		Limit(maxActivityRows).
		Find(&out).Error
	return out, err
}
