// Package services holds the check-in business operations used by the HTTP
// handlers and the operator CLI. This file centralizes the service-level error
// values; translating them into HTTP status codes is the handler's job.
package services

import "errors"

var (
	// ErrRecordNotFound indicates no record was ever stored for a code.
	ErrRecordNotFound = errors.New("record not found")

	// ErrFileNotFound indicates the requested storage key holds no unit.
	ErrFileNotFound = errors.New("file not found")

	// ErrInvalidKey is returned for storage keys the store never issues,
	// including anything that looks like a path.
	ErrInvalidKey = errors.New("invalid storage key")

	// ErrPersist wraps every failure to durably write a check-in. The
	// submission was not stored and the caller must report a server error.
	ErrPersist = errors.New("failed to persist check-in")
)
