package domain

import "errors"

// Error kinds shared by every service. Services wrap these with %w and
// the HTTP layer maps them to status codes by errors.Is.
var (
	ErrNotFound          = errors.New("not found")
	ErrValidation        = errors.New("validation failed")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrPermissionDenied  = errors.New("permission denied")
	ErrConflict          = errors.New("conflict")
)
