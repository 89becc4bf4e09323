package store

import "errors"

// ErrNotFound is returned when the requested row does not exist.
// Handlers translate it to a 404.
var ErrNotFound = errors.New("not found")
