// Idempotency records let submission POSTs be retried safely: a repeated
// request carrying the same Idempotency-Key returns the originally minted
// opportunity instead of inserting a second batch.
package domain

import "time"

// Idempotency represents a recorded result of a previously processed
// submission, keyed by (user_id, subject, key) where subject is the
// opportunity name the batch was created under.
type Idempotency struct {
	ID            string    `gorm:"type:TEXT NOT NULL;primaryKey"`
	UserID        string    `gorm:"type:TEXT NOT NULL;uniqueIndex:ux_user_subject_key,priority:1"`
	Subject       string    `gorm:"type:TEXT NOT NULL;uniqueIndex:ux_user_subject_key,priority:2"`
	Key           string    `gorm:"type:TEXT NOT NULL;uniqueIndex:ux_user_subject_key,priority:3"`
	OpportunityID string    `gorm:"type:TEXT NOT NULL"`
	Status        int       `gorm:"type:INTEGER NOT NULL"`
	CreatedAt     time.Time `gorm:"type:DATETIME NOT NULL;autoCreateTime"`
	ExpiresAt     time.Time `gorm:"type:DATETIME NOT NULL;index"`
}

// TableName implements the GORM tabler interface.
func (Idempotency) TableName() string { return "idempotency" }
