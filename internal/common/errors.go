package common

import (
	"errors"
	"fmt"
)

// Kind classifies a failure so that it can be surfaced to a caller as a
// structured request failure.
type Kind string

const (
	KindNotAuthenticated     Kind = "NotAuthenticated"
	KindPrimaryAlreadyExists Kind = "PrimaryAlreadyExists"
	KindSignupNotStarted     Kind = "SignupNotStarted"
	KindIncompleteBuilder    Kind = "IncompleteBuilder"
	KindAlreadyBuilt         Kind = "AlreadyBuilt"
	KindAuthenticationFailed Kind = "AuthenticationFailed"
	KindInvalidTotp          Kind = "InvalidTotp"
	KindNotFound             Kind = "NotFound"
	KindIoError              Kind = "IoError"
	KindCryptoError          Kind = "CryptoError"
	KindInvalidWordCount     Kind = "InvalidWordCount"
	KindInvalidParams        Kind = "InvalidParams"
	KindRateLimited          Kind = "RateLimited"
	KindNotImplemented       Kind = "NotImplemented"
	KindInternal             Kind = "Internal"
)

// Error is a failure tagged with a Kind. Two *Error values match under
// errors.Is when their kinds are equal, so the sentinels below can be used
// as targets regardless of the message.
type Error struct {
	Kind Kind
	Msg  string
	// Field names the missing builder field for KindIncompleteBuilder.
	Field string
	Err   error
}

func (e *Error) Error() string {
	switch {
	case e.Msg == "" && e.Err != nil:
		return e.Err.Error()
	case e.Msg == "":
		return string(e.Kind)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// NewError builds a tagged error wrapping err (which may be nil).
func NewError(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// Errorf builds a tagged error with a formatted message. A %w verb in format
// is honoured for unwrapping.
func Errorf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Err: fmt.Errorf(format, args...)}
}

// KindOf returns the kind of the first *Error in err's chain, or
// KindInternal when there is none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Sentinels, one per kind. Match with errors.Is.
var (
	ErrNotAuthenticated     = &Error{Kind: KindNotAuthenticated, Msg: "not logged in"}
	ErrPrimaryAlreadyExists = &Error{Kind: KindPrimaryAlreadyExists, Msg: "primary account already exists"}
	ErrSignupNotStarted     = &Error{Kind: KindSignupNotStarted, Msg: "account signup has not been started"}
	ErrIncompleteBuilder    = &Error{Kind: KindIncompleteBuilder, Msg: "account builder is incomplete"}
	ErrAlreadyBuilt         = &Error{Kind: KindAlreadyBuilt, Msg: "account creation is done"}
	ErrAuthenticationFailed = &Error{Kind: KindAuthenticationFailed, Msg: "authentication failed"}
	ErrInvalidTotp          = &Error{Kind: KindInvalidTotp, Msg: "invalid 2FA token"}
	ErrNotFound             = &Error{Kind: KindNotFound, Msg: "not found"}
	ErrIO                   = &Error{Kind: KindIoError, Msg: "i/o error"}
	ErrCrypto               = &Error{Kind: KindCryptoError, Msg: "crypto error"}
	ErrInvalidWordCount     = &Error{Kind: KindInvalidWordCount, Msg: "word count must be 12, 18 or 24"}
	ErrInvalidParams        = &Error{Kind: KindInvalidParams, Msg: "invalid params"}
	ErrRateLimited          = &Error{Kind: KindRateLimited, Msg: "too many attempts"}
	ErrNotImplemented       = &Error{Kind: KindNotImplemented, Msg: "not implemented"}
	ErrInternal             = &Error{Kind: KindInternal, Msg: "internal error"}
)

// IncompleteBuilder reports which builder field is missing.
func IncompleteBuilder(field string) *Error {
	return &Error{Kind: KindIncompleteBuilder, Msg: field + " is not configured", Field: field}
}
