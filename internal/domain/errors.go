package domain

import "errors"

// Validation errors
var (
	ErrInvalidRole = errors.New("invalid role")
)
