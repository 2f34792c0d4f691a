// Package common defines shared constants and sentinel errors used across
// the storage, service and presentation layers of gophdesk. Callers should
// use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal = errors.New("internal error")

	// Directory errors. All of them are expected, caller-facing outcomes.
	ErrDuplicateUsername     = errors.New("username already exists")
	ErrInvalidCredentials    = errors.New("invalid username or password")
	ErrAccountInactive       = errors.New("account is inactive")
	ErrSelfDeletionForbidden = errors.New("cannot delete the account of the current session")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
)
