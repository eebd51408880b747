package model

import "errors"

// Errors shared by the store and the mervlink services. Callers match them
// with errors.Is; the store wraps them with context.
var (
	ErrInvalid         = errors.New("invalid input")
	ErrNotFound        = errors.New("not found")
	ErrDuplicate       = errors.New("duplicate")
	ErrAlreadyShared   = errors.New("already shared")
	ErrAlreadyResolved = errors.New("already resolved")
	ErrAmbiguous       = errors.New("ambiguous match")
	ErrGone            = errors.New("no longer available")
)
