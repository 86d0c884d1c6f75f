package storage

import "errors"

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// ErrConflict is returned when a conditional update finds the row changed
// since it was read.
var ErrConflict = errors.New("version conflict")
