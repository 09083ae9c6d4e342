// Package domain defines the persistence models for the presales pipeline:
// opportunity line items, the opportunity-name sequence ledger, and the
// append-only activity log. These types are mapped with GORM and form the
// core data layer of the application.
package domain

import "time"

// Pipeline stage terminals. In-progress stage names are catalog-driven
// (see PipelineStage); these two are fixed and always valid targets.
const (
	StageClosedWon  = "Closed Won"
	StageClosedLost = "Closed Lost"

	// StageOpen is the stage a line item starts in when none is supplied.
	StageOpen = "Open"
)

// LineItem is the atomic persisted unit of an opportunity. An opportunity is
// not stored directly: it is the group of line items sharing OpportunityID.
//
// Identity fields:
//   - UID: primary key, "{opportunity_id}-{product_id}-{timestamp}{index}".
//     Replaced in place by a full edit that changes OpportunityID/ProductID;
//     callers must always re-fetch by the latest known value.
//   - OpportunityID: "{SalesGroup}{SequenceToken}", shared by all lines of
//     one submission; changes only when the sales group is reassigned.
//   - ProductID: "{PillarID}{SolutionID}{ServiceID}{BrandCode}", uppercase.
//
// Classification fields are denormalized copies of catalog selections taken
// at submission/edit time, not foreign keys.
type LineItem struct {
	UID           string `json:"uid"            gorm:"column:uid;type:varchar(128);primaryKey"`
	OpportunityID string `json:"opportunity_id" gorm:"type:varchar(32);not null;index:idx_opportunity_lines"`
	ProductID     string `json:"product_id"     gorm:"type:varchar(64);not null"`

	PresalesName    string `json:"presales_name"    gorm:"type:varchar(128)"`
	SalesGroupID    string `json:"salesgroup_id"    gorm:"type:varchar(16)"`
	SalesName       string `json:"sales_name"       gorm:"type:varchar(128)"`
	ResponsibleName string `json:"responsible_name" gorm:"type:varchar(128)"`

	OpportunityName  string     `json:"opportunity_name" gorm:"type:varchar(255);not null;index"`
	StartDate        *time.Time `json:"start_date"`
	CompanyName      string     `json:"company_name"      gorm:"type:varchar(255)"`
	VerticalIndustry string     `json:"vertical_industry" gorm:"type:varchar(128)"`

	Pillar          string `json:"pillar"           gorm:"type:varchar(128)"`
	Solution        string `json:"solution"         gorm:"type:varchar(128)"`
	Service         string `json:"service"          gorm:"type:varchar(128)"`
	Brand           string `json:"brand"            gorm:"type:varchar(128)"`
	Channel         string `json:"channel"          gorm:"type:varchar(64)"`
	DistributorName string `json:"distributor_name" gorm:"type:varchar(128)"`

	Cost  float64 `json:"cost"  gorm:"not null;default:0"`
	Notes string  `json:"notes" gorm:"type:text"`

	// Stage is a property of the opportunity as a whole but is stored
	// per line; transitions bulk-update every line sharing OpportunityID.
	Stage            string     `json:"stage"       gorm:"type:varchar(64);not null;default:'Open'"`
	StageNotes       string     `json:"stage_notes" gorm:"type:text"`
	StageChangedDate *time.Time `json:"stage_changed_date"`
	ClosingReason    string     `json:"closing_reason" gorm:"type:varchar(128)"`
	ClosingNotes     string     `json:"closing_notes"  gorm:"type:text"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name for LineItem.
func (LineItem) TableName() string { return "opportunities" }

// SequenceEntry maps an opportunity name to its immutable sequence token
// (Q3 + zero-padded number). Exactly one entry per distinct name is ever
// created; tokens are never reassigned or reused. Uniqueness on both columns
// turns the read-max-then-increment race into a conflict the caller retries.
type SequenceEntry struct {
	Token     string    `json:"rows_id"     gorm:"column:rows_id;type:varchar(16);primaryKey"`
	Name      string    `json:"description" gorm:"column:description;type:varchar(255);not null;uniqueIndex:ux_sequence_name"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the database table name for SequenceEntry.
func (SequenceEntry) TableName() string { return "description" }

// ActivityLog is an append-only audit entry. Rows are never updated or
// deleted; reversing a change is recorded as a new forward entry.
//
// Subject holds an opportunity name for create/field events and an
// opportunity ID for stage events, mirroring how each event is keyed.
type ActivityLog struct {
	ID        string    `json:"id"               gorm:"type:char(36);primaryKey"`
	Timestamp time.Time `json:"timestamp"        gorm:"not null;index"`
	Subject   string    `json:"opportunity_name" gorm:"column:opportunity_name;type:varchar(255)"`
	UserName  string    `json:"user_name"        gorm:"type:varchar(128)"`
	Action    string    `json:"action"           gorm:"type:varchar(16);not null;check:action IN ('CREATE','UPDATE')"`
	Field     string    `json:"field"            gorm:"type:varchar(64)"`
	OldValue  string    `json:"old_value"        gorm:"type:text"`
	NewValue  string    `json:"new_value"        gorm:"type:text"`
}

// TableName returns the database table name for ActivityLog.
func (ActivityLog) TableName() string { return "activity_logs" }

// Audit actions recorded in ActivityLog.Action.
const (
	ActionCreate = "CREATE"
	ActionUpdate = "UPDATE"
)
