package booking

import (
	"errors"
	"fmt"
)

var ErrNotFound = errors.New("booking not found")

// validation reasons
var (
	ErrSelfBooking         = errors.New("owners cannot book their own vehicle")
	ErrUnverified          = errors.New("customer is not verified")
	ErrActiveBookingExists = errors.New("an active booking already exists for this vehicle")
	ErrInvalidStatus       = errors.New("unknown booking status")
	ErrInvalidTransition   = errors.New("status transition not allowed")
	ErrNotEditable         = errors.New("only pending bookings can be edited")
	ErrNotSettleable       = errors.New("only ongoing or completed bookings can be settled")
	ErrLocationRequired    = errors.New("locations must not be empty")
	ErrDatesRequired       = errors.New("start and end dates are required")
)

// ValidationError is returned before anything is written. Reason is one of
// the sentinels above or a pricing sentinel.
type ValidationError struct {
	Reason error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %v", e.Reason)
}

func (e *ValidationError) Unwrap() error { return e.Reason }

func invalid(reason error) error {
	return &ValidationError{Reason: reason}
}
