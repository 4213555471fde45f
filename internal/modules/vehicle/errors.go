package vehicle

import "errors"

var (
	ErrNotFound       = errors.New("vehicle not found")
	ErrInvalidRequest = errors.New("invalid request")
	ErrInvalidStatus  = errors.New("invalid vehicle status")
	ErrPlateTaken     = errors.New("plate number already registered")
)
