// Package common defines sentinel errors shared by the storage, service and
// handler layers. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("user with this email or username already exists")

	// ErrUnavailable wraps storage faults surfaced by the service layer.
	// Handlers map it to a generic failure without exposing internal detail.
	ErrUnavailable = errors.New("service unavailable")
)
