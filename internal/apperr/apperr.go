// Package apperr defines the error kinds shared by services, the dispatcher
// and the HTTP layer. Handlers translate a Kind into a status code; the
// worker records the message on the send state and keeps going.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies a failure independently of where it happened.
type Kind string

const (
	KindInvalidArgument   Kind = "invalid-argument"
	KindInvalidTransition Kind = "invalid-transition"
	KindConflict          Kind = "conflict"
	KindNotFound          Kind = "not-found"
	KindTransientSend     Kind = "transient-send-failure"
	KindConfiguration     Kind = "configuration-error"
	KindUnauthorized      Kind = "unauthorized"
	KindInternal          Kind = "internal"
)

// Sentinels for errors.Is checks. An *Error matches the sentinel of its kind.
var (
	ErrInvalidArgument   = errors.New("invalid argument")
	ErrInvalidTransition = errors.New("invalid transition")
	ErrConflict          = errors.New("conflict")
	ErrNotFound          = errors.New("not found")
	ErrTransientSend     = errors.New("transient send failure")
	ErrConfiguration     = errors.New("configuration error")
	ErrUnauthorized      = errors.New("unauthorized")
)

var sentinels = map[Kind]error{
	KindInvalidArgument:   ErrInvalidArgument,
	KindInvalidTransition: ErrInvalidTransition,
	KindConflict:          ErrConflict,
	KindNotFound:          ErrNotFound,
	KindTransientSend:     ErrTransientSend,
	KindConfiguration:     ErrConfiguration,
	KindUnauthorized:      ErrUnauthorized,
}

// Error carries the kind, the operation that failed and an optional cause.
type Error struct {
	Kind    Kind
	Op      string
	Msg     string
	Err     error
	Details map[string]any
}

func (e *Error) Error() string {
	msg := e.Msg
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	} else if e.Err != nil {
		msg = msg + ": " + e.Err.Error()
	}
	if e.Op == "" {
		return msg
	}
	return fmt.Sprintf("%s: %s", e.Op, msg)
}

func (e *Error) Unwrap() error { return e.Err }

// Is lets errors.Is(err, apperr.ErrConflict) match any conflict-kind error.
func (e *Error) Is(target error) bool {
	if s, ok := sentinels[e.Kind]; ok && s == target {
		return true
	}
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Op == "" || t.Op == e.Op)
}

// WithDetail returns e with an extra detail attached.
func (e *Error) WithDetail(key string, value any) *Error {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New builds an error of the given kind with a formatted message.
func New(kind Kind, op, format string, args ...any) *Error {
	return &Error{Kind: kind, Op: op, Msg: fmt.Sprintf(format, args...)}
}

// Wrap attaches a kind to an underlying error. A nil err returns nil.
func Wrap(kind Kind, op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

func InvalidArgument(op, format string, args ...any) *Error {
	return New(KindInvalidArgument, op, format, args...)
}

func InvalidTransition(op, format string, args ...any) *Error {
	return New(KindInvalidTransition, op, format, args...)
}

func Conflict(op, format string, args ...any) *Error {
	return New(KindConflict, op, format, args...)
}

func NotFound(op, format string, args ...any) *Error {
	return New(KindNotFound, op, format, args...)
}

// KindOf returns the kind of the first *Error in err's chain, or KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Message returns the user-facing part of err without the op prefix.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		if e.Msg != "" {
			return e.Msg
		}
		if e.Err != nil {
			return e.Err.Error()
		}
	}
	if err == nil {
		return ""
	}
	return err.Error()
}
