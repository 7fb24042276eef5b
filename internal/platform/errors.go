package platform

import (
	"errors"
	"fmt"
)

// ErrorKind classifies failures talking to the remote task platform so
// callers can decide between retrying (connectivity), re-authenticating
// (auth), or fixing the request (validation).
type ErrorKind string

const (
	KindAuth         ErrorKind = "auth"
	KindValidation   ErrorKind = "validation"
	KindNotFound     ErrorKind = "not_found"
	KindConnectivity ErrorKind = "connectivity"
)

// Error is a platform failure tagged with its kind.
type Error struct {
	Kind ErrorKind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("platform %s error: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("platform %s error: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Retryable reports whether a caller-level retry could plausibly succeed
// without changing the request.
func (e *Error) Retryable() bool {
	return e.Kind == KindConnectivity
}

func NewError(kind ErrorKind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

func WrapError(kind ErrorKind, msg string, err error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// KindOf returns the platform error kind carried by err, or "" when err is
// not a platform error.
func KindOf(err error) ErrorKind {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return ""
}

func IsAuth(err error) bool         { return KindOf(err) == KindAuth }
func IsValidation(err error) bool   { return KindOf(err) == KindValidation }
func IsNotFound(err error) bool     { return KindOf(err) == KindNotFound }
func IsConnectivity(err error) bool { return KindOf(err) == KindConnectivity }
