package graph

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes expected failures. Commands map these to clean
// user-facing messages; anything without a code propagates with full
// diagnostic detail.
type ErrorCode string

const (
	// ErrCodeDocumentNotFound indicates the SG or recipe file is missing.
	ErrCodeDocumentNotFound ErrorCode = "DOCUMENT_NOT_FOUND"

	// ErrCodeDocumentParse indicates a malformed header or data block.
	ErrCodeDocumentParse ErrorCode = "DOCUMENT_PARSE_ERROR"

	// ErrCodeOperation indicates an invalid operation request: missing
	// required field, unknown condition, invalid class requirement.
	ErrCodeOperation ErrorCode = "OPERATION_ERROR"

	// ErrCodeEntityNotFound indicates a referenced node or relation is absent.
	ErrCodeEntityNotFound ErrorCode = "ENTITY_NOT_FOUND"

	// ErrCodeDuplicateEntity indicates an identity collision on insert.
	ErrCodeDuplicateEntity ErrorCode = "DUPLICATE_ENTITY"

	// ErrCodePrecondition indicates a lifecycle command invoked in a
	// disallowed log state.
	ErrCodePrecondition ErrorCode = "PRECONDITION_FAILED"
)

// Error is a classified failure with structured context.
type Error struct {
	Code    ErrorCode
	Message string
	Details map[string]string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewError creates a classified error without details.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// NewErrorf creates a classified error with a formatted message.
func NewErrorf(code ErrorCode, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// WithDetail attaches a key/value pair to the error and returns it.
func (e *Error) WithDetail(key, value string) *Error {
	if e.Details == nil {
		e.Details = map[string]string{}
	}
	e.Details[key] = value
	return e
}

// CodeOf extracts the ErrorCode from err, unwrapping as needed.
// Returns "" for unclassified errors.
func CodeOf(err error) ErrorCode {
	var ge *Error
	if errors.As(err, &ge) {
		return ge.Code
	}
	return ""
}

// IsEntityNotFound reports whether err is an ENTITY_NOT_FOUND error.
func IsEntityNotFound(err error) bool {
	return CodeOf(err) == ErrCodeEntityNotFound
}

// IsDuplicateEntity reports whether err is a DUPLICATE_ENTITY error.
func IsDuplicateEntity(err error) bool {
	return CodeOf(err) == ErrCodeDuplicateEntity
}

// IsPreconditionFailed reports whether err is a PRECONDITION_FAILED error.
func IsPreconditionFailed(err error) bool {
	return CodeOf(err) == ErrCodePrecondition
}
