// Package errors provides structured error types for depotctl.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the CLI and the core
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Codes follow the taxonomy of kinds the core distinguishes for propagation
// policy: validation failures are fatal and never retried, IO/parse
// failures are treated as "absent" inside GC and the Usage Ledger but fatal
// elsewhere, and RegistryFailure is retried once by instantiate.
//
// # Usage
//
//	err := errors.New(errors.CodeInvalidSpec, "julia is not a valid package name")
//	if errors.Is(err, errors.CodeInvalidSpec) {
//	    // Handle validation error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.CodeIOFailure, origErr, "read %s", path)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes, one per kind in the error taxonomy.
const (
	// CodeInvalidSpec: spec validation failed (bad name, conflicting
	// fields, duplicate, reserved name). Fatal, never retried.
	CodeInvalidSpec Code = "INVALID_SPEC"

	// CodeUnresolvedSpec: a spec could not be bound to a uuid from the
	// environment. Fatal.
	CodeUnresolvedSpec Code = "UNRESOLVED_SPEC"

	// CodeNotFound: package absent from manifest when required (rm, free,
	// pin). Fatal.
	CodeNotFound Code = "NOT_FOUND"

	// CodeIOFailure: filesystem read/write failure. In GC and the Usage
	// Ledger: logged, treated as if the file were missing or the
	// deletion were partial. Elsewhere: fatal.
	CodeIOFailure Code = "IO_FAILURE"

	// CodeParseFailure: malformed TOML. In GC: treated as empty.
	// Elsewhere: fatal.
	CodeParseFailure Code = "PARSE_FAILURE"

	// CodeRegistryFailure: registry refresh or lookup failed. Retried
	// once after forced registry update for instantiate; otherwise
	// propagated.
	CodeRegistryFailure Code = "REGISTRY_FAILURE"

	// CodeGitFailure: clone/fetch/checkout failed, or tree-hash not found
	// after fetch. Fatal to the current instantiate; other packages
	// continue.
	CodeGitFailure Code = "GIT_FAILURE"

	// CodePrecompileError: the external compile routine failed. Recorded
	// per-package; the scheduler continues and aggregates at the end.
	CodePrecompileError Code = "PRECOMPILE_ERROR"

	// CodePrecompilableLater: compile reported "not cacheable in this
	// session". Recorded as a warning, not an error.
	CodePrecompilableLater Code = "PRECOMPILABLE_LATER"

	// CodeInterrupted: cooperative cancellation. The scheduler returns
	// without a final error.
	CodeInterrupted Code = "INTERRUPTED"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// TreatAsAbsent reports whether err, encountered while reading depot state
// during GC or the Usage Ledger, should be treated as "file absent" rather
// than propagated.
func TreatAsAbsent(err error) bool {
	switch GetCode(err) {
	case CodeIOFailure, CodeParseFailure:
		return true
	default:
		return false
	}
}
