package containers

import (
	"errors"
	"fmt"
)

type ErrorKind string

const (
	ErrNotFound          ErrorKind = "not-found"
	ErrInvalidIdentifier ErrorKind = "invalid-identifier"
	ErrPermissionDenied  ErrorKind = "permission-denied"
	ErrStoreUnavailable  ErrorKind = "store-unavailable"
	ErrIOFailure         ErrorKind = "io-failure"
)

// Error is the diagnostic surfaced by Registry.Resolve.
type Error struct {
	Kind       ErrorKind
	Identifier string
	cause      error
}

func NewError(kind ErrorKind, id string, cause error) *Error {
	return &Error{Kind: kind, Identifier: id, cause: cause}
}

func (e *Error) Error() string {
	var message string

	switch e.Kind {
	case ErrNotFound:
		message = fmt.Sprintf("No container with %q identifier", e.Identifier)
	case ErrInvalidIdentifier:
		message = fmt.Sprintf("Invalid container identifier %q", e.Identifier)
	case ErrPermissionDenied:
		message = fmt.Sprintf("Access to %q container is denied", e.Identifier)
	case ErrStoreUnavailable:
		message = "Container store is unavailable"
	default:
		message = fmt.Sprintf("Container %q I/O failure", e.Identifier)
	}

	if e.cause != nil {
		message += ": " + e.cause.Error()
	}

	return message
}

func (e *Error) Unwrap() error {
	return e.cause
}

func KindOf(err error) (ErrorKind, bool) {
	var typed *Error
	if errors.As(err, &typed) {
		return typed.Kind, true
	}
	return "", false
}

func IsKind(err error, kind ErrorKind) bool {
	resolved, ok := KindOf(err)
	return ok && resolved == kind
}
