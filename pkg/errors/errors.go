// Package errors provides the unified error type and factory functions for the
// BDST toolchain.  Every layer (domain engine, application drivers, CLI) uses
// AppError as the single carrier for structured error information, enabling
// consistent exit codes, logging, and per-record error reporting.
package errors

import (
	"errors"
	"fmt"
)

// ─────────────────────────────────────────────────────────────────────────────
// AppError — the canonical error type
// ─────────────────────────────────────────────────────────────────────────────

// AppError is the single structured error type used throughout BDST.
// It satisfies the standard error interface and supports Go 1.13+ error
// wrapping so that errors.Is / errors.As / errors.Unwrap work transparently
// across all layers.
//
// Usage:
//
//	return errors.New(errors.CodeConfigMissingKey, "missing key bdst_v1.hazard_extraction")
//	return errors.Wrap(readErr, errors.CodeBatchInput, "failed to read plants table")
//	return errors.InvalidRecord("scientific name is required").
//	           WithDetail("row=41")
type AppError struct {
	// Code is the typed error code that uniquely identifies the failure category.
	Code ErrorCode

	// Message is the primary human-readable description of the error.
	Message string

	// Detail carries supplementary context (configuration paths, row indices,
	// offending values) that aids debugging without widening Message.
	Detail string

	// Cause is the underlying error that triggered this AppError, enabling
	// errors.Is / errors.As traversal of the full error chain.
	Cause error
}

// Error implements the standard error interface.
// Format: "[<code>] <message>: <detail>"; the detail segment is omitted when
// Detail is empty.
func (e *AppError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.Message, e.Detail)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause error, enabling errors.Is and errors.As
// to traverse the full error chain without additional boilerplate at call sites.
func (e *AppError) Unwrap() error {
	return e.Cause
}

// ─────────────────────────────────────────────────────────────────────────────
// Fluent builder methods
// ─────────────────────────────────────────────────────────────────────────────

// WithDetail returns a shallow copy of the receiver with Detail set to the
// supplied string.  It is safe to call on a nil pointer (returns nil).
func (e *AppError) WithDetail(detail string) *AppError {
	if e == nil {
		return nil
	}
	clone := *e
	clone.Detail = detail
	return &clone
}

// WithCause returns a shallow copy of the receiver with Cause set to err.
// Use this when attaching a lower-level error to an already-constructed
// AppError without going through Wrap.
func (e *AppError) WithCause(err error) *AppError {
	if e == nil {
		return nil
	}
	clone := *e
	clone.Cause = err
	return &clone
}

// ─────────────────────────────────────────────────────────────────────────────
// Primary factory functions
// ─────────────────────────────────────────────────────────────────────────────

// New constructs a fresh AppError with the given code and message.
// New is the preferred factory for errors that originate in the current layer
// without an underlying cause from a lower layer.
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap constructs an AppError that wraps an existing error.
// If err is nil, Wrap returns nil so it can be used inline:
//
//	return errors.Wrap(loadRules(path), errors.CodeConfigUnreadable, "rules document")
//
// When err is already an *AppError and code is CodeUnknown the original code
// is preserved, preventing loss of the original classification during
// cross-layer propagation.
func Wrap(err error, code ErrorCode, message string) *AppError {
	if err == nil {
		return nil
	}
	if code == CodeUnknown {
		var ae *AppError
		if errors.As(err, &ae) {
			code = ae.Code
		}
	}
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Error-chain inspection helpers
// ─────────────────────────────────────────────────────────────────────────────

// IsCode reports whether any error in err's chain is an *AppError with the
// given code.  It is the idiomatic way to check specific failure modes:
//
//	if errors.IsCode(err, errors.CodeRecordInvalid) { ... }
func IsCode(err error, code ErrorCode) bool {
	var ae *AppError
	for err != nil {
		if errors.As(err, &ae) && ae.Code == code {
			return true
		}
		err = errors.Unwrap(err)
	}
	return false
}

// IsInvalidRecord reports whether any error in err's chain carries
// CodeRecordInvalid.  Batch drivers use this to distinguish the per-record
// placeholder path from genuinely unexpected failures.
func IsInvalidRecord(err error) bool {
	return IsCode(err, CodeRecordInvalid)
}

// GetCode extracts the ErrorCode from the first *AppError found in err's
// chain.  If err is nil CodeOK is returned; if no *AppError is present,
// CodeUnknown.  Logging layers use this to emit a single code field without
// coupling to specific failure modes.
func GetCode(err error) ErrorCode {
	if err == nil {
		return CodeOK
	}
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Code
	}
	return CodeUnknown
}

// ─────────────────────────────────────────────────────────────────────────────
// Convenience factory functions for the most common error conditions
// ─────────────────────────────────────────────────────────────────────────────

// Internal constructs a CodeInternal AppError.  Use this for unexpected
// failures where no more specific code applies.
func Internal(message string) *AppError {
	return &AppError{
		Code:    CodeInternal,
		Message: message,
	}
}

// InvalidParam constructs a CodeInvalidParam AppError, used for caller
// mistakes such as contradictory CLI flags or unusable paths.
func InvalidParam(message string) *AppError {
	return &AppError{
		Code:    CodeInvalidParam,
		Message: message,
	}
}

// InvalidRecord constructs a CodeRecordInvalid AppError.  A missing
// scientific name is the only condition that aborts a single evaluation;
// everything else degrades to unknown classifications.
func InvalidRecord(message string) *AppError {
	return &AppError{
		Code:    CodeRecordInvalid,
		Message: message,
	}
}

// ConfigMissing constructs a CodeConfigMissingKey AppError for a required
// rule-document key that is absent.
func ConfigMissing(message string) *AppError {
	return &AppError{
		Code:    CodeConfigMissingKey,
		Message: message,
	}
}

// ConfigInvalid constructs a CodeConfigInvalid AppError for a present but
// unusable configuration value.
func ConfigInvalid(message string) *AppError {
	return &AppError{
		Code:    CodeConfigInvalid,
		Message: message,
	}
}

// IOFailure constructs a CodeIOFailure AppError for file read/write problems
// outside the batch-input path.
func IOFailure(message string) *AppError {
	return &AppError{
		Code:    CodeIOFailure,
		Message: message,
	}
}
