// Package errors provides structured error types for parley.
// These errors provide context about what operation failed and where.
package errors

import (
	"errors"
	"fmt"
)

// Op describes an operation, usually as "package.function".
type Op string

// Kind categorizes the type of error.
type Kind int

const (
	KindUnknown Kind = iota
	KindNotFound
	KindInvalid
	KindIO
	KindConfig
	KindTransport
	KindBusy
	KindTimeout
	KindAuth
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not found"
	case KindInvalid:
		return "invalid"
	case KindIO:
		return "I/O error"
	case KindConfig:
		return "configuration error"
	case KindTransport:
		return "transport error"
	case KindBusy:
		return "busy"
	case KindTimeout:
		return "timeout"
	case KindAuth:
		return "not authenticated"
	default:
		return "unknown error"
	}
}

// Error is the structured error type for parley.
type Error struct {
	Op      Op     // Operation that failed
	Kind    Kind   // Category of error
	Err     error  // Underlying error
	Context string // Additional context
}

// Error returns the error message.
func (e *Error) Error() string {
	if e.Context != "" {
		return fmt.Sprintf("%s: %s: %s", e.Op, e.Context, e.Err)
	}
	if e.Op != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Err)
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// E creates a new Error. Arguments can be:
// - Op: the operation name
// - Kind: the error kind
// - string: context message
// - error: the underlying error
func E(args ...any) error {
	e := &Error{}
	for _, arg := range args {
		switch a := arg.(type) {
		case Op:
			e.Op = a
		case Kind:
			e.Kind = a
		case string:
			e.Context = a
		case error:
			e.Err = a
		}
	}
	if e.Err == nil {
		e.Err = errors.New(e.Context)
		e.Context = ""
	}
	return e
}

// Is reports whether err is of the given Kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// GetKind returns the Kind of an error.
func GetKind(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// As is errors.As, re-exported so callers that import this package as
// "errors" keep access to it.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// New is errors.New.
func New(text string) error {
	return errors.New(text)
}

// Validation errors

func AttachmentTooLarge(name string, size, limit int64) error {
	return E(Op("attach.Stage"), KindInvalid, fmt.Sprintf("%s is %d bytes, limit is %d", name, size, limit))
}

func EmptyMessage() error {
	return E(Op("chat.Send"), KindInvalid, "message has no text and no attachments")
}

func AttachmentIndex(index, count int) error {
	return E(Op("attach.Unstage"), KindInvalid, fmt.Sprintf("index %d out of range (%d staged)", index, count))
}

// SessionBusy is returned when a send is attempted while a reply, reveal or
// history load is outstanding.
func SessionBusy(state string) error {
	return E(Op("chat.Send"), KindBusy, fmt.Sprintf("session is busy (%s)", state))
}

// NotSignedIn is returned by commands that need a stored token.
func NotSignedIn() error {
	return E(Op("cmd"), KindAuth, "not signed in: run `parley login` first")
}

// Transport errors

func Transport(op Op, err error) error {
	return E(op, KindTransport, err)
}

// Payment errors

func PaymentTimeout(reference string, polls int) error {
	return E(Op("payment.Poll"), KindTimeout, fmt.Sprintf("payment %s not confirmed after %d checks", reference, polls))
}

// Config errors

func ConfigLoadFailed(path string, err error) error {
	return E(Op("config.Load"), KindConfig, fmt.Sprintf("failed to load config from %s", path), err)
}

func ConfigSaveFailed(path string, err error) error {
	return E(Op("config.Save"), KindConfig, fmt.Sprintf("failed to save config to %s", path), err)
}

func ConfigInvalid(reason string) error {
	return E(Op("config.Validate"), KindInvalid, reason)
}
