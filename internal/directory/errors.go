package directory

import "errors"

var (
	// ErrUserNotFound is returned when a person lookup yields no entry.
	ErrUserNotFound = errors.New("directory user not found")

	// ErrGroupNotFound is returned when a group lookup yields no entry.
	ErrGroupNotFound = errors.New("directory group not found")

	// ErrAmbiguousResult is returned when a query expected one entry but
	// found several. A result is never silently picked.
	ErrAmbiguousResult = errors.New("directory query returned multiple entries")
)
