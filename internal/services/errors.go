// internal/services/errors.go
package services

import "errors"

// Sentinel errors the handlers translate to HTTP statuses. Everything
// else bubbles up as a 500.
var (
	ErrNotFound            = errors.New("record not found")
	ErrInvalidInput        = errors.New("invalid input")
	ErrInvalidTransition   = errors.New("invalid status transition")
	ErrNoSelectedQuotation = errors.New("no supplier quotation selected")
	ErrDuplicate           = errors.New("record already exists")
)
