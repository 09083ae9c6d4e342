package stage

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/kurniawank/go-presales-backend/internal/domain"
)

func TestIsTerminal(t *testing.T) {
	cases := map[string]bool{
		domain.StageClosedWon:  true,
		domain.StageClosedLost: true,
		"Open":                 false,
		"Proposal":             false,
		"closed won":           false, // exact match only
	}
	for in, want := range cases {
		if got := IsTerminal(in); got != want {
			t.Errorf("IsTerminal(%q) = %v; want %v", in, got, want)
		}
	}
}

func TestReasonsFor(t *testing.T) {
	if got := ReasonsFor(domain.StageClosedWon); len(got) != 6 {
		t.Fatalf("won categories = %d; want 6", len(got))
	}
	if got := ReasonsFor(domain.StageClosedLost); len(got) != 8 {
		t.Fatalf("lost categories = %d; want 8", len(got))
	}
	if got := ReasonsFor("Negotiation"); got != nil {
		t.Fatalf("in-progress stage must have no categories, got %v", got)
	}
}

func TestValidate_InProgress(t *testing.T) {
	tr := Transition{Target: "Proposal", Notes: "BoQ approved"}
	if err := tr.Validate(); err != nil {
		t.Fatalf("in-progress transition rejected: %v", err)
	}

	// No closing reason may ride along on an in-progress move.
	tr.ClosingReason = "No Decision"
	if err := tr.Validate(); !errors.Is(err, ErrReasonNotAllowed) {
		t.Fatalf("expected ErrReasonNotAllowed, got %v", err)
	}
}

func TestValidate_ClosingRequiresReason(t *testing.T) {
	for _, target := range []string{domain.StageClosedWon, domain.StageClosedLost} {
		tr := Transition{Target: target, Notes: "post-mortem"}
		if err := tr.Validate(); !errors.Is(err, ErrClosingReasonRequired) {
			t.Errorf("%s without reason: got %v; want ErrClosingReasonRequired", target, err)
		}
	}
}

func TestValidate_ReasonMustMatchOutcome(t *testing.T) {
	// A lost category on a won close is rejected.
	tr := Transition{Target: domain.StageClosedWon, ClosingReason: "No Decision"}
	if err := tr.Validate(); !errors.Is(err, ErrUnknownClosingReason) {
		t.Fatalf("expected ErrUnknownClosingReason, got %v", err)
	}

	tr = Transition{Target: domain.StageClosedWon, ClosingReason: "Technical Solution Fit"}
	if err := tr.Validate(); err != nil {
		t.Fatalf("valid won close rejected: %v", err)
	}

	tr = Transition{Target: domain.StageClosedLost, ClosingReason: "Lost to Incumbent"}
	if err := tr.Validate(); err != nil {
		t.Fatalf("valid lost close rejected: %v", err)
	}
}

func TestValidate_EmptyTarget(t *testing.T) {
	if err := (Transition{}).Validate(); !errors.Is(err, ErrEmptyStage) {
		t.Fatalf("expected ErrEmptyStage, got %v", err)
	}
}

func TestSummary(t *testing.T) {
	tr := Transition{
		Target:        "Negotiation",
		Notes:         "client asked for revised BoQ",
		EffectiveDate: time.Date(2025, 2, 10, 0, 0, 0, 0, time.UTC),
	}
	got := tr.Summary("Proposal")
	if !strings.Contains(got, "Proposal -> Negotiation") || !strings.Contains(got, "2025-02-10") {
		t.Fatalf("summary missing transition info: %q", got)
	}
	if strings.Contains(got, "Reason:") {
		t.Fatalf("in-progress summary must not mention a reason: %q", got)
	}

	tr.Target = domain.StageClosedLost
	tr.ClosingReason = "Competitor - Price"
	got = tr.Summary("Negotiation")
	if !strings.Contains(got, "(Reason: Competitor - Price)") {
		t.Fatalf("closing summary missing reason: %q", got)
	}
}
