package auth

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailAlreadyExists = errors.New("email already exists")
	ErrInvalidRole        = errors.New("role must be customer or owner")
	ErrInvalidStatus      = errors.New("unknown verification status")
	ErrUserNotFound       = errors.New("user not found")
)
