// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides the sequence-token ledger behind
// opportunity IDs.
//
// The ledger is append-only: one row per distinct opportunity name, minted on
// first submission and never reassigned. Both the name and the token carry
// UNIQUE constraints, so the read-max-then-increment window under concurrent
// submissions surfaces as ErrSequenceConflict instead of a duplicate token;
// callers retry the whole submission.
//
// Error semantics:
//   - FindToken / MaxToken return "" (no error) when nothing matches.
//   - InsertToken returns ErrSequenceConflict on a unique violation and the
//     raw gorm error otherwise.
package repo

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/kurniawank/go-presales-backend/internal/domain"
)

// ErrSequenceConflict indicates that another submission minted the same
// token or name concurrently. The enclosing operation is safe to retry.
var ErrSequenceConflict = errors.New("sequence token conflict")

// SequenceRepo adapts the ledger table to the identity.SequenceStore
// contract. It carries the handle the enclosing transaction runs on, so
// lookup-or-create stays inside one transactional boundary.
type SequenceRepo struct {
	DB *gorm.DB
}

// FindToken returns the token recorded for name, or "" when absent.
func (r SequenceRepo) FindToken(ctx context.Context, name string) (string, error) {
	var entry domain.SequenceEntry
	err := r.DB.WithContext(ctx).
		Where("description = ?", name).
		Limit(1).
		Find(&entry).Error
	if err != nil {
		return "", err
	}
	return entry.Token, nil
}

// MaxToken returns the greatest token issued so far, or "" on an empty
// ledger. Tokens share the fixed Q3 prefix and zero padding, so MAX() over
// the text column matches numeric order in the common path.
func (r SequenceRepo) MaxToken(ctx context.Context) (string, error) {
	var max *string
	err := r.DB.WithContext(ctx).
		Model(&domain.SequenceEntry{}).
		Select("MAX(rows_id)").
		Scan(&max).Error
	if err != nil {
		return "", err
	}
	if max == nil {
		return "", nil
	}
	return *max, nil
}

// InsertToken persists a new (name, token) pair, translating unique
// violations to ErrSequenceConflict.
func (r SequenceRepo) InsertToken(ctx context.Context, name, token string) error {
	entry := &domain.SequenceEntry{
		Token:     token,
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}
	if err := r.DB.WithContext(ctx).Create(entry).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrSequenceConflict
		}
		return err
	}
	return nil
}

// isUniqueViolation detects unique-constraint failures across the error
// shapes the pure-Go sqlite driver produces.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	low := strings.ToLower(err.Error())
	return strings.Contains(low, "unique constraint failed") ||
		strings.Contains(low, "constraint failed: unique")
}
