package services

import "errors"

// Sentinel errors for the domain taxonomy. Not-found conditions reuse
// store.ErrNotFound. Handlers match these with errors.Is to pick the
// HTTP status.
var (
	// ErrValidation marks malformed or missing input.
	ErrValidation = errors.New("validation failed")

	// ErrForbidden marks an authenticated caller with insufficient role
	// or ownership.
	ErrForbidden = errors.New("forbidden")

	// ErrConflict marks an entity in the wrong state for the requested
	// transition, such as booking an unavailable car or editing an
	// approved listing.
	ErrConflict = errors.New("conflict")
)
