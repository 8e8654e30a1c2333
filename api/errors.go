// Package api
// Author: momentics <momentics@gmail.com>
//
// Common error types and error handling utilities for hioload-mpt.

package api

import "fmt"

// ErrorCode represents specific error conditions in the library.
type ErrorCode int

const (
	ErrCodeOK ErrorCode = iota
	ErrCodeInvalidArgument
	ErrCodeResourceExhausted
	ErrCodeClosed
	ErrCodeKeyTooLong
	ErrCodePathTruncated
	ErrCodeNotFound
	ErrCodeInternal
)

func (c ErrorCode) String() string {
	switch c {
	case ErrCodeOK:
		return "ok"
	case ErrCodeInvalidArgument:
		return "invalid_argument"
	case ErrCodeResourceExhausted:
		return "resource_exhausted"
	case ErrCodeClosed:
		return "closed"
	case ErrCodeKeyTooLong:
		return "key_too_long"
	case ErrCodePathTruncated:
		return "path_truncated"
	case ErrCodeNotFound:
		return "not_found"
	default:
		return "internal"
	}
}

// Common errors used across the library.
var (
	ErrInvalidArgument   = NewError(ErrCodeInvalidArgument, "invalid argument")
	ErrResourceExhausted = NewError(ErrCodeResourceExhausted, "resource exhausted")
	ErrClosed            = NewError(ErrCodeClosed, "bridge is closed")
	ErrKeyTooLong        = NewError(ErrCodeKeyTooLong, "key exceeds inline capacity")
	ErrPathTruncated     = NewError(ErrCodePathTruncated, "traversal path truncated")
	ErrNotFound          = NewError(ErrCodeNotFound, "resource not found")
	ErrNilTrie           = NewError(ErrCodeInvalidArgument, "trie is nil")
	ErrInvalidRecord     = NewError(ErrCodeInvalidArgument, "malformed wire record")
)

// Error represents a structured error with code and context.
type Error struct {
	Code    ErrorCode
	Message string
	Context map[string]any
}

// Error implements the error interface.
func (e *Error) Error() string {
	if len(e.Context) == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s (context: %+v)", e.Message, e.Context)
}

// Is reports whether target is an *Error carrying the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewError creates a new structured error.
func NewError(code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

// WithContext returns a copy of the error with key set in its context.
// Sentinels are shared, so the receiver is never mutated.
func (e *Error) WithContext(key string, value any) *Error {
	ctx := make(map[string]any, len(e.Context)+1)
	for k, v := range e.Context {
		ctx[k] = v
	}
	ctx[key] = value
	return &Error{Code: e.Code, Message: e.Message, Context: ctx}
}
