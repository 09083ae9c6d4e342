package identity

import "errors"

// ErrEmptyName is returned when token resolution is attempted for a blank
// opportunity name. Names are the business key of the sequence ledger and
// must be non-empty.
var ErrEmptyName = errors.New("opportunity name is empty")
