// Package stage implements the pipeline stage state machine: which stage
// names are terminal, which closing categories are admissible per outcome,
// and what metadata a transition must carry. The rules are pure; applying a
// transition to storage is the stage service's job.
//
// States are an open set of catalog-configured in-progress names plus the
// two fixed terminals "Closed Won" and "Closed Lost". No transition graph is
// enforced between in-progress stages; reversing a transition is a new
// forward transition.
package stage

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/kurniawank/go-presales-backend/internal/domain"
)

// WonReasons are the admissible closing categories for Closed Won.
var WonReasons = []string{
	"Commercial / Price Strategy",
	"Technical Solution Fit",
	"Relationship / Trust",
	"Delivery / Timeline",
	"After-Sales Service",
	"Other Winning Factors",
}

// LostReasons are the admissible closing categories for Closed Lost.
var LostReasons = []string{
	"Price / Budget Constraint",
	"Competitor - Technical",
	"Competitor - Price",
	"Feature Gap / Spec Mismatch",
	"Late Proposal Submission",
	"Project Cancelled",
	"Lost to Incumbent",
	"No Decision",
}

// Transition describes a requested stage change for one opportunity. All
// line items sharing the opportunity ID move together.
type Transition struct {
	OpportunityID string
	Target        string
	Notes         string
	// EffectiveDate is caller-supplied to support backdating; it is never
	// derived from the wall clock here.
	EffectiveDate time.Time
	Actor         string
	// ClosingReason is required iff Target is terminal.
	ClosingReason string
}

// IsTerminal reports whether the stage name is a fixed closing stage.
func IsTerminal(stage string) bool {
	return stage == domain.StageClosedWon || stage == domain.StageClosedLost
}

// ReasonsFor returns the closing-category list for a terminal stage, or nil
// for in-progress stages.
func ReasonsFor(target string) []string {
	switch target {
	case domain.StageClosedWon:
		return WonReasons
	case domain.StageClosedLost:
		return LostReasons
	default:
		return nil
	}
}

// Validate enforces the closing-category contract inside the engine rather
// than trusting the caller: a terminal target requires a reason drawn from
// that outcome's list, and an in-progress target must not carry one.
func (t Transition) Validate() error {
	target := strings.TrimSpace(t.Target)
	if target == "" {
		return ErrEmptyStage
	}
	reason := strings.TrimSpace(t.ClosingReason)

	if !IsTerminal(target) {
		if reason != "" {
			return ErrReasonNotAllowed
		}
		return nil
	}

	if reason == "" {
		return fmt.Errorf("%w: %s", ErrClosingReasonRequired, target)
	}
	for _, allowed := range ReasonsFor(target) {
		if reason == allowed {
			return nil
		}
	}
	return fmt.Errorf("%w: %q is not a %s category", ErrUnknownClosingReason, reason, target)
}

// WithTerminals injects the fixed closing stages into a catalog-sourced
// in-progress list (deduplicated) and returns the names sorted.
func WithTerminals(inProgress []string) []string {
	out := make([]string, 0, len(inProgress)+2)
	seen := make(map[string]struct{}, len(inProgress)+2)
	for _, name := range append(append([]string{}, inProgress...), domain.StageClosedWon, domain.StageClosedLost) {
		if _, dup := seen[name]; dup || strings.TrimSpace(name) == "" {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Summary renders the audit-log line for an applied transition
// (old stage, new stage, effective date, note, and reason when closing).
func (t Transition) Summary(oldStage string) string {
	s := fmt.Sprintf("%s -> %s | Date: %s | Note: %s",
		oldStage, t.Target, t.EffectiveDate.Format("2006-01-02"), t.Notes)
	if reason := strings.TrimSpace(t.ClosingReason); reason != "" {
		s += fmt.Sprintf(" (Reason: %s)", reason)
	}
	return s
}
