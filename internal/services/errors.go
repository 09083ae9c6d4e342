// Package services defines the business logic for opportunities, stage
// transitions, and the reference catalog. This file centralizes common
// service-level error values so that they can be consistently returned by
// service methods and checked by callers.
//
// These errors are intended for internal use by the service layer and translation
// into user-facing messages or HTTP status codes should be performed at the
// handler/controller layer.
package services

import "errors"

var (
	// ErrOpportunityNotFound indicates that the requested opportunity ID does
	// not resolve to any line item.
	ErrOpportunityNotFound = errors.New("opportunity not found")

	// ErrLineItemNotFound indicates that the requested UID does not resolve
	// to any line item (possibly because a full edit replaced it).
	ErrLineItemNotFound = errors.New("line item not found")

	// ErrEmptyName is returned when a submission carries a blank
	// opportunity name; names are the sequence ledger's business key.
	ErrEmptyName = errors.New("opportunity name is required")

	// ErrNoLines is returned when a submission carries no product lines.
	ErrNoLines = errors.New("at least one product line is required")

	// ErrUnknownAction is returned for a master-data action outside the
	// fixed query set.
	ErrUnknownAction = errors.New("unknown master data action")
)
