package notify

import "errors"

// ErrNoRecipient is returned when a notification carries no recipient
// address.
var ErrNoRecipient = errors.New("notification recipient is empty")
