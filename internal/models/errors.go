package models

import (
	"errors"
	"fmt"
)

// ErrorKind classifies failures surfaced to callers
type ErrorKind string

const (
	KindNotFound   ErrorKind = "not_found"
	KindMalformed  ErrorKind = "malformed"
	KindUnsafePath ErrorKind = "unsafe_path"
	KindIO         ErrorKind = "io_failure"
	KindUnknown    ErrorKind = "unknown"
)

// Error is a classified failure from a file, parse or sandbox operation
type Error struct {
	Kind ErrorKind
	Op   string
	Path string
	Err  error
}

func (e *Error) Error() string {
	msg := e.Op
	if e.Path != "" {
		msg += " " + e.Path
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError builds a classified error. format and args describe the cause.
func NewError(kind ErrorKind, op, path, format string, args ...interface{}) *Error {
	return &Error{
		Kind: kind,
		Op:   op,
		Path: path,
		Err:  fmt.Errorf(format, args...),
	}
}

// WrapError classifies an existing error
func WrapError(kind ErrorKind, op, path string, err error) *Error {
	return &Error{Kind: kind, Op: op, Path: path, Err: err}
}

// KindOf returns the kind of the first *Error in err's chain, or KindUnknown
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// IsKind reports whether err carries the given kind
func IsKind(err error, kind ErrorKind) bool {
	return err != nil && KindOf(err) == kind
}
