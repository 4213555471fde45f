package pricing

import (
	"errors"
	"fmt"
)

var (
	ErrVehicleUnavailable = errors.New("vehicle is not available")
	ErrStartInPast        = errors.New("start date is in the past")
	ErrEndNotAfterStart   = errors.New("end date must be after start date")
	ErrDayCount           = errors.New("booking must span at least one day")
	ErrNoRate             = errors.New("vehicle has no daily rate")

	ErrOdometerRegression = errors.New("end odometer is below start odometer")
	ErrNegativeReading    = errors.New("mileage values must not be negative")
)

// ValidationError is a rejected quote or settlement. Reason is one of the
// sentinels above and is reachable through errors.Is.
type ValidationError struct {
	Reason error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("pricing: %v", e.Reason)
}

func (e *ValidationError) Unwrap() error { return e.Reason }

func invalid(reason error) error {
	return &ValidationError{Reason: reason}
}
