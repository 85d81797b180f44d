// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Template Stack Contributors

package auth

import (
	"errors"
	"net/http"
)

// ErrNotFound is returned by a UserStore when a requested user does not exist.
var ErrNotFound = errors.New("not found")

// Kind classifies an auth failure for the route layer.
type Kind int

// Error kinds.
const (
	KindUnknown Kind = iota
	KindUnauthorized
	KindConflict
	KindCrypto
	KindInternal
	KindConfiguration
	KindValidation
)

// String returns the error class name.
func (k Kind) String() string {
	switch k {
	case KindUnauthorized:
		return "UnauthorizedError"
	case KindConflict:
		return "ConflictError"
	case KindCrypto:
		return "CryptoError"
	case KindInternal:
		return "InternalServerError"
	case KindConfiguration:
		return "ConfigurationError"
	case KindValidation:
		return "ValidationError"
	default:
		return "Error"
	}
}

// Error is a typed auth failure. Message is safe to show to clients;
// Err carries the underlying cause, usually an oops error with context.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the kind sentinels (ErrUnauthorized, ErrConflict, ...), so
// callers can write errors.Is(err, auth.ErrUnauthorized).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Message == "" && t.Err == nil && t.Kind == e.Kind
}

// Kind sentinels for errors.Is.
var (
	ErrUnauthorized  = &Error{Kind: KindUnauthorized}
	ErrConflict      = &Error{Kind: KindConflict}
	ErrCrypto        = &Error{Kind: KindCrypto}
	ErrInternal      = &Error{Kind: KindInternal}
	ErrConfiguration = &Error{Kind: KindConfiguration}
	ErrValidation    = &Error{Kind: KindValidation}
)

// Client-facing messages.
const (
	MsgInvalidToken       = "Invalid token"
	MsgMissingToken       = "No valid authorization token provided"
	MsgInvalidCredentials = "Invalid email or password"
	MsgUserNotFound       = "User not found"
	MsgUserExists         = "User with this email already exists"
	MsgCreateUserFailed   = "Failed to create user"
)

func newError(kind Kind, msg string, cause error) *Error {
	return &Error{Kind: kind, Message: msg, Err: cause}
}

// Unauthorized returns an UnauthorizedError with the given message.
func Unauthorized(msg string, cause error) error {
	return newError(KindUnauthorized, msg, cause)
}

// Conflict returns a ConflictError with the given message.
func Conflict(msg string, cause error) error {
	return newError(KindConflict, msg, cause)
}

// Crypto returns a CryptoError with the given message.
func Crypto(msg string, cause error) error {
	return newError(KindCrypto, msg, cause)
}

// Internal returns an InternalServerError with the given message.
func Internal(msg string, cause error) error {
	return newError(KindInternal, msg, cause)
}

// Configuration returns a ConfigurationError. These are fatal at startup.
func Configuration(msg string, cause error) error {
	return newError(KindConfiguration, msg, cause)
}

// Validation returns a ValidationError with the given message.
func Validation(msg string, cause error) error {
	return newError(KindValidation, msg, cause)
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// HTTPStatus maps err to the status code a route handler should reply with.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindConflict:
		return http.StatusConflict
	case KindValidation:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage returns the client-facing message for err. Anything that is
// not a typed auth error collapses to a generic message.
func PublicMessage(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Kind != KindCrypto && e.Kind != KindConfiguration {
		return e.Message
	}
	return "Internal server error"
}
