// Package apperr holds the sentinel errors shared across packages.
package apperr

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrConfig            = errors.New("invalid configuration")
	ErrSourceUnavailable = errors.New("source unavailable")
	ErrInvalidContent    = errors.New("invalid content")
	ErrInvalidInput      = errors.New("invalid input")
	ErrNotReady          = errors.New("site not built yet")
)
