// Reference catalog models: read-only classification taxonomies consulted
// when deriving product IDs and rendering master-data dropdowns. Rows are
// maintained out of band; this application only reads them.
package domain

// MasterPillar maps a (pillar, solution, service) name triple to the ID parts
// used in product IDs. The catalog is expected deduplicated; lookups take the
// first row on exact triple match.
type MasterPillar struct {
	ID           uint   `json:"-"             gorm:"primaryKey;autoIncrement"`
	PillarName   string `json:"pillar_name"   gorm:"type:varchar(128);not null;index:idx_pillar_triple,priority:1"`
	SolutionName string `json:"solution_name" gorm:"type:varchar(128);not null;index:idx_pillar_triple,priority:2"`
	ServiceName  string `json:"service_name"  gorm:"type:varchar(128);not null;index:idx_pillar_triple,priority:3"`
	PillarID     string `json:"pillar_id"     gorm:"type:varchar(16)"`
	SolutionID   string `json:"solution_id"   gorm:"type:varchar(16)"`
	ServiceID    string `json:"service_id"    gorm:"type:varchar(16)"`
}

// TableName returns the database table name for MasterPillar.
func (MasterPillar) TableName() string { return "master_pillars" }

// Brand maps a brand name to its short code and sales channel.
type Brand struct {
	ID        uint   `json:"-"          gorm:"primaryKey;autoIncrement"`
	BrandName string `json:"brand_name" gorm:"type:varchar(128);index"`
	BrandCode string `json:"brand_code" gorm:"type:varchar(16)"`
	Channel   string `json:"channel"    gorm:"type:varchar(64)"`
}

// TableName returns the database table name for Brand.
func (Brand) TableName() string { return "brands" }

// PipelineStage is a configurable in-progress stage name. Terminal stages
// (Closed Won/Lost) are fixed constants and are not stored here.
type PipelineStage struct {
	ID        uint   `json:"-"          gorm:"primaryKey;autoIncrement"`
	StageName string `json:"stage_name" gorm:"type:varchar(64);not null"`
	StageType string `json:"stage_type" gorm:"type:varchar(32);not null;index"`
}

// TableName returns the database table name for PipelineStage.
func (PipelineStage) TableName() string { return "stage_pipeline" }

// SalesName associates a salesperson with their sales group.
type SalesName struct {
	ID         uint   `json:"-"           gorm:"primaryKey;autoIncrement"`
	SalesGroup string `json:"sales_group" gorm:"type:varchar(16);index"`
	SalesName  string `json:"sales_name"  gorm:"type:varchar(128)"`
}

// TableName returns the database table name for SalesName.
func (SalesName) TableName() string { return "sales_names" }

// Presales is a presales engineer able to record opportunities.
type Presales struct {
	ID           uint   `json:"-"             gorm:"primaryKey;autoIncrement"`
	PresalesName string `json:"presales_name" gorm:"type:varchar(128)"`
	Email        string `json:"email"         gorm:"type:varchar(255)"`
}

// TableName returns the database table name for Presales.
func (Presales) TableName() string { return "presales" }

// Responsible is an account manager selectable as responsible for a deal.
type Responsible struct {
	ID              uint   `json:"-"                gorm:"primaryKey;autoIncrement"`
	ResponsibleName string `json:"responsible_name" gorm:"type:varchar(128)"`
}

// TableName returns the database table name for Responsible.
func (Responsible) TableName() string { return "responsible" }

// PAMMapping routes an inputter to their partner account manager, used when
// addressing notification mail.
type PAMMapping struct {
	ID           uint   `json:"-"             gorm:"primaryKey;autoIncrement"`
	InputterName string `json:"inputter_name" gorm:"type:varchar(128)"`
	PAMName      string `json:"pam_name"      gorm:"type:varchar(128)"`
}

// TableName returns the database table name for PAMMapping.
func (PAMMapping) TableName() string { return "mapping_pam" }

// Company couples a customer with its vertical industry.
type Company struct {
	ID               uint   `json:"-"                 gorm:"primaryKey;autoIncrement"`
	CompanyName      string `json:"company_name"      gorm:"type:varchar(255);index"`
	VerticalIndustry string `json:"vertical_industry" gorm:"type:varchar(128)"`
}

// TableName returns the database table name for Company.
func (Company) TableName() string { return "companies" }

// Distributor is a selectable distribution partner.
type Distributor struct {
	ID              uint   `json:"-"                gorm:"primaryKey;autoIncrement"`
	DistributorName string `json:"distributor_name" gorm:"type:varchar(128)"`
}

// TableName returns the database table name for Distributor.
func (Distributor) TableName() string { return "distributors" }
