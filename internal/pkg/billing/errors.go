package billing

import "errors"

var (
	// ErrUserNotFound is returned when an event references a customer email
	// or customer id that no local user matches. Deliveries for unknown
	// users are processing errors, not silent no-ops.
	ErrUserNotFound = errors.New("billing: no user matches provider reference")

	// ErrUnknownPrice is returned when a recurring line item carries a price
	// id that is not in the configured catalog.
	ErrUnknownPrice = errors.New("billing: unrecognized recurring price id")
)
