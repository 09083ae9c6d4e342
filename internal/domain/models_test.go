package domain

import "testing"

// Table names are load-bearing: they are the contract with existing SQLite
// files, so a rename would silently orphan data.
func TestTableNames(t *testing.T) {
	cases := map[string]string{
		"opportunities":  LineItem{}.TableName(),
		"description":    SequenceEntry{}.TableName(),
		"activity_logs":  ActivityLog{}.TableName(),
		"idempotency":    Idempotency{}.TableName(),
		"master_pillars": MasterPillar{}.TableName(),
		"brands":         Brand{}.TableName(),
		"stage_pipeline": PipelineStage{}.TableName(),
		"sales_names":    SalesName{}.TableName(),
		"presales":       Presales{}.TableName(),
		"responsible":    Responsible{}.TableName(),
		"mapping_pam":    PAMMapping{}.TableName(),
		"companies":      Company{}.TableName(),
		"distributors":   Distributor{}.TableName(),
	}
	for want, got := range cases {
		if got != want {
			t.Errorf("TableName() = %q, want %q", got, want)
		}
	}
}

func TestStageConstants(t *testing.T) {
	if StageClosedWon != "Closed Won" || StageClosedLost != "Closed Lost" {
		t.Fatalf("terminal stage names changed: %q %q", StageClosedWon, StageClosedLost)
	}
	if StageOpen != "Open" {
		t.Fatalf("default stage changed: %q", StageOpen)
	}
}
