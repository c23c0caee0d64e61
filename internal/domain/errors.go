package domain

import "errors"

var (
	// ErrNotFound indicates the requested entity was not found.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists indicates a uniqueness conflict.
	ErrAlreadyExists = errors.New("already exists")
	// ErrIdentityMismatch indicates a stored cart belongs to a different
	// user than the caller. Treated as a hard authentication error.
	ErrIdentityMismatch = errors.New("identity mismatch")
)
