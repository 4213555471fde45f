package codegen

import (
	"errors"
	"fmt"
)

var (
	ErrAllocationExhausted = errors.New("code allocation retries exhausted")
	ErrSequenceOverflow    = errors.New("daily code sequence exhausted")
)

// AllocationExhaustedError is returned when every attempt lost the race for a code.
// The caller should retry the whole request, not just the allocation.
type AllocationExhaustedError struct {
	Prefix   string
	Attempts int
	Last     error
}

func (e *AllocationExhaustedError) Error() string {
	return fmt.Sprintf("allocate %s code: %d attempts exhausted: %v", e.Prefix, e.Attempts, e.Last)
}

func (e *AllocationExhaustedError) Unwrap() error { return e.Last }

func (e *AllocationExhaustedError) Is(target error) bool {
	return target == ErrAllocationExhausted
}
