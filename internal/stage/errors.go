package stage

import "errors"

var (
	// ErrEmptyStage is returned when a transition carries no target stage.
	ErrEmptyStage = errors.New("target stage is empty")

	// ErrClosingReasonRequired is returned when a transition to Closed
	// Won/Lost omits the closing reason.
	ErrClosingReasonRequired = errors.New("closing reason required")

	// ErrUnknownClosingReason is returned when the closing reason is not in
	// the category list of the requested outcome.
	ErrUnknownClosingReason = errors.New("unknown closing reason")

	// ErrReasonNotAllowed is returned when an in-progress transition carries
	// a closing reason; closing fields are only written by terminal moves.
	ErrReasonNotAllowed = errors.New("closing reason only valid for terminal stages")
)
