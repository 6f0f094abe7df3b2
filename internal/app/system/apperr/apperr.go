// Package apperr defines the machine-distinguishable error kinds returned by
// stores and handlers. Callers branch on Kind, never on message text.
package apperr

import (
	"errors"
	"fmt"
)

// Kind is a stable error code exposed to API clients.
type Kind string

const (
	NotFound               Kind = "NotFound"
	PermissionDenied       Kind = "PermissionDenied"
	InvalidCategory        Kind = "InvalidCategory"
	ValidationFailed       Kind = "ValidationFailed"
	InvalidTransition      Kind = "InvalidTransition"
	AlreadyJoined          Kind = "AlreadyJoined"
	SelfJoin               Kind = "SelfJoin"
	RequestClosed          Kind = "RequestClosed"
	ContentRejected        Kind = "ContentRejected"
	RecipientNotFound      Kind = "RecipientNotFound"
	AuthenticationRequired Kind = "AuthenticationRequired"
	PersistenceError       Kind = "PersistenceError"
	UpstreamUnavailable    Kind = "UpstreamUnavailable"
	RateLimited            Kind = "RateLimited"
)

// Error is a classified error. Fields is set for ValidationFailed when the
// failure can be attributed to individual input fields.
type Error struct {
	Kind    Kind
	Message string
	Fields  map[string]string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error with the same Kind, so errors.Is(err, apperr.New(k, ""))
// and errors.Is(err, apperr.ErrNotFound) work as expected.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

// New returns an error of the given kind.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

// Newf is New with formatting.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap classifies err under kind.
func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Message: msg, Err: err}
}

// Validation returns a ValidationFailed error carrying per-field messages.
func Validation(msg string, fields map[string]string) *Error {
	return &Error{Kind: ValidationFailed, Message: msg, Fields: fields}
}

// Persistence wraps a storage-layer failure.
func Persistence(err error) *Error {
	return Wrap(PersistenceError, "storage operation failed", err)
}

// Sentinels for errors.Is comparisons.
var (
	ErrNotFound               = New(NotFound, "")
	ErrPermissionDenied       = New(PermissionDenied, "")
	ErrInvalidCategory        = New(InvalidCategory, "")
	ErrValidationFailed       = New(ValidationFailed, "")
	ErrInvalidTransition      = New(InvalidTransition, "")
	ErrAlreadyJoined          = New(AlreadyJoined, "")
	ErrSelfJoin               = New(SelfJoin, "")
	ErrRequestClosed          = New(RequestClosed, "")
	ErrContentRejected        = New(ContentRejected, "")
	ErrRecipientNotFound      = New(RecipientNotFound, "")
	ErrAuthenticationRequired = New(AuthenticationRequired, "")
	ErrPersistence            = New(PersistenceError, "")
	ErrUpstreamUnavailable    = New(UpstreamUnavailable, "")
	ErrRateLimited            = New(RateLimited, "")
)

// KindOf returns the kind of err. Unclassified errors are PersistenceError.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return PersistenceError
}

// As extracts the *Error from err, classifying unknown errors as
// PersistenceError.
func As(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Persistence(err)
}
