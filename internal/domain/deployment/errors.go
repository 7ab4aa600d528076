package deployment

import (
	"errors"
	"fmt"
)

// Kind classifies deployment failures.
type Kind string

const (
	// KindValidation is a bad local input; nothing was sent to AWS.
	KindValidation Kind = "validation"
	// KindClientUnavailable means no AWS client could be built.
	KindClientUnavailable Kind = "client unavailable"
	// KindRemote is an error returned by AWS that ended the deployment.
	KindRemote Kind = "remote"
)

var (
	// ErrArchiveNotFound is returned when the archive path is not an existing regular file.
	ErrArchiveNotFound = errors.New("archive not found")
	// ErrClientUnavailable is returned when the AWS client cannot be constructed.
	ErrClientUnavailable = errors.New("aws client unavailable")
	// ErrInvalidRequest is returned for request fields that fail local checks.
	ErrInvalidRequest = errors.New("invalid deployment request")
)

// Error is a classified deployment failure.
type Error struct {
	// Err is the underlying cause.
	Err error
	// Kind is the failure class.
	Kind Kind
	// Op names the step that failed, e.g. "create function".
	Op string
}

// NewError builds an *Error for the given class and step.
func NewError(kind Kind, op string, err error) *Error {
	return &Error{
		Err:  err,
		Kind: kind,
		Op:   op,
	}
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s failed", e.Op, e.Kind)
	}

	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

// Unwrap exposes the underlying cause to errors.Is and errors.As.
func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the class of err, or an empty Kind when err is not an *Error.
func KindOf(err error) Kind {
	var deployErr *Error
	if errors.As(err, &deployErr) {
		return deployErr.Kind
	}

	return ""
}

// NewUnavailableError builds a KindClientUnavailable error that matches ErrClientUnavailable.
func NewUnavailableError(op string, err error) *Error {
	return NewError(KindClientUnavailable, op, fmt.Errorf("%w: %w", ErrClientUnavailable, err))
}
