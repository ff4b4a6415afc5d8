package service

import (
	"errors"

	"github.com/aussiebroadwan/jwtauth/pkg/jwtx"
)

// Kind classifies a service failure. The set is closed; the HTTP layer maps
// each kind to exactly one status code.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindAuthentication
	KindAuthorization
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuthentication:
		return "authentication"
	case KindAuthorization:
		return "authorization"
	case KindNotFound:
		return "not_found"
	default:
		return "internal"
	}
}

// Error is a business-rule failure with a client-facing message.
type Error struct {
	Kind    Kind
	Message string
	Err     error // optional cause, never shown to clients
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches on kind and message so a sentinel still matches after a cause
// has been attached with wrap.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Message == t.Message
}

func (e *Error) wrap(cause error) *Error {
	return &Error{Kind: e.Kind, Message: e.Message, Err: cause}
}

var (
	ErrEmailTaken          = &Error{Kind: KindValidation, Message: "Email already exists!"}
	ErrUserNotFound        = &Error{Kind: KindNotFound, Message: "User not found!"}
	ErrInvalidCredentials  = &Error{Kind: KindAuthentication, Message: "Invalid email or password!"}
	ErrMissingRefreshToken = &Error{Kind: KindAuthentication, Message: "No refresh token provided!"}
	ErrInvalidRefreshToken = &Error{Kind: KindAuthorization, Message: "Invalid or expired refresh token!"}
	ErrTokenUserMismatch   = &Error{Kind: KindAuthorization, Message: "Token does not match the user!"}
)

// Invalid reports malformed input.
func Invalid(msg string) *Error {
	return &Error{Kind: KindValidation, Message: msg}
}

// KindOf classifies any error. Token verification failures count as
// authorization failures; anything untyped is internal.
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	if jwtx.IsTokenError(err) {
		return KindAuthorization
	}
	return KindInternal
}
