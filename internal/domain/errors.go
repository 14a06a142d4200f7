package domain

import (
	"errors"
	"fmt"
)

// Kind categorizes an error so callers can react without string matching
type Kind uint8

const (
	KindUnknown Kind = iota
	KindValidation
	KindNotFound
	KindConflict
	KindBusy
	KindInternal
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindBusy:
		return "busy"
	case KindInternal:
		return "internal"
	default:
		return "unknown"
	}
}

// Error is the error type returned by store, scanner and policy operations
type Error struct {
	Kind    Kind
	Op      string
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same Kind, so errors.Is(err, ErrNotFound) works
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// Sentinels for errors.Is checks
var (
	ErrValidation = &Error{Kind: KindValidation}
	ErrNotFound   = &Error{Kind: KindNotFound}
	ErrConflict   = &Error{Kind: KindConflict}
	ErrBusy       = &Error{Kind: KindBusy}
	ErrInternal   = &Error{Kind: KindInternal}
)

// Validation creates a validation error
func Validation(op, msg string) error {
	return &Error{Kind: KindValidation, Op: op, Message: msg}
}

// NotFound creates a not-found error
func NotFound(op, msg string) error {
	return &Error{Kind: KindNotFound, Op: op, Message: msg}
}

// Conflict creates a conflict error
func Conflict(op, msg string) error {
	return &Error{Kind: KindConflict, Op: op, Message: msg}
}

// Busy creates an error for a resource that is already in use
func Busy(op, msg string) error {
	return &Error{Kind: KindBusy, Op: op, Message: msg}
}

// Internal wraps an unexpected failure
func Internal(op string, err error) error {
	return &Error{Kind: KindInternal, Op: op, Message: "internal error", Err: err}
}

// KindOf returns the Kind of err, or KindUnknown for foreign errors
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}
