// Package fserr defines the error taxonomy for sandboxed filesystem operations.
//
// Every failure surfaced by the service carries a stable code alongside a
// human-readable message:
//   - EINVAL: bad argument (unsupported encoding, malformed input), raised
//     synchronously before any I/O
//   - ECONFIG: application identifier missing when sandboxing is required
//   - EROOT: path does not fall under any recognized sandboxed root
//   - native codes (ENOENT, EACCES, EUNSPECIFIED, ...) for failures reported
//     by the underlying collaborator
package fserr

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"syscall"
)

// Well-known codes.
const (
	CodeInvalidArgument = "EINVAL"
	CodeConfiguration   = "ECONFIG"
	CodeInvalidRoot     = "EROOT"
	CodeNotFound        = "ENOENT"
	CodeAccessDenied    = "EACCES"
	CodeExists          = "EEXIST"
	CodeNotDir          = "ENOTDIR"
	CodeUnspecified     = "EUNSPECIFIED"
)

// Error is the uniform error shape returned by the service.
type Error struct {
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap exposes the wrapped cause for errors.Is/errors.As chains.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches two taxonomy errors by code.
func (e *Error) Is(target error) bool {
	var other *Error
	if errors.As(target, &other) {
		return e.Code == other.Code
	}
	return false
}

// New creates a taxonomy error with an explicit code.
func New(code, format string, args ...interface{}) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Invalid creates an EINVAL error.
func Invalid(format string, args ...interface{}) *Error {
	return New(CodeInvalidArgument, format, args...)
}

// Config creates an ECONFIG error.
func Config(format string, args ...interface{}) *Error {
	return New(CodeConfiguration, format, args...)
}

// InvalidRoot creates an EROOT error.
func InvalidRoot(format string, args ...interface{}) *Error {
	return New(CodeInvalidRoot, format, args...)
}

// FromNative converts an error reported by the underlying collaborator into
// the uniform shape, unwrapping one level of cause wrapping. Errors that are
// already taxonomy errors pass through unchanged.
func FromNative(err error) *Error {
	if err == nil {
		return nil
	}

	var converted *Error
	if errors.As(err, &converted) {
		return converted
	}

	// One level of unwrapping: report the cause's message under the
	// mapped code rather than the wrapper's.
	cause := err
	if inner := errors.Unwrap(err); inner != nil {
		cause = inner
	}

	return &Error{Code: nativeCode(err), Message: cause.Error(), Err: err}
}

// CodeOf extracts the taxonomy code from any error, EUNSPECIFIED if absent.
func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeUnspecified
}

func nativeCode(err error) string {
	switch {
	case errors.Is(err, fs.ErrNotExist) || errors.Is(err, os.ErrNotExist):
		return CodeNotFound
	case errors.Is(err, fs.ErrPermission):
		return CodeAccessDenied
	case errors.Is(err, fs.ErrExist):
		return CodeExists
	case errors.Is(err, syscall.ENOTDIR):
		return CodeNotDir
	default:
		return CodeUnspecified
	}
}
