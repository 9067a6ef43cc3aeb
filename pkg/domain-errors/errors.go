// Package domainerrors carries typed failure codes across layer boundaries so
// transports can map outcomes without string matching. The codes distinguish
// "fix your input" from "nothing was charged, retry" from "outcome unknown,
// verify before retrying".
package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code classifies a failure.
type Code string

const (
	// CodeValidation marks malformed input rejected before any ledger call.
	CodeValidation Code = "validation"
	// CodeConfiguration marks missing or invalid connection/identity setup.
	CodeConfiguration Code = "configuration"
	// CodeSubmission marks a state-changing operation the ledger rejected or
	// failed to process.
	CodeSubmission Code = "submission"
	// CodeRead marks a lookup that failed for reasons other than absence.
	CodeRead Code = "read"
	// CodeTimeout marks a bounded wait that expired with the outcome unknown.
	CodeTimeout Code = "timeout"
	// CodeNotFound marks a record that does not exist. For latest-record
	// lookups this is an expected outcome, not a fault.
	CodeNotFound Code = "not_found"

	CodeUnauthorized Code = "unauthorized"
	CodeBadRequest   Code = "bad_request"
	CodeRateLimited  Code = "rate_limited"
	CodeInternal     Code = "internal"
)

// Error is the concrete error type carried between layers. Field is set for
// validation failures to name the offending input.
type Error struct {
	Code    Code
	Field   string
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return e.Message + ": " + e.cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.cause }

// New creates an error with a code and message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf creates an error with a code and formatted message.
func Newf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// NewValidation creates a validation error naming the offending field and the
// violated constraint.
func NewValidation(field, reason string) *Error {
	return &Error{Code: CodeValidation, Field: field, Message: field + ": " + reason}
}

// Wrap attaches a code and message to an underlying error.
func Wrap(err error, code Code, message string) *Error {
	return &Error{Code: code, Message: message, cause: err}
}

// WrapOp adds operation context to an error while preserving its code and
// field. Returns nil when err is nil.
func WrapOp(err error, op string) error {
	if err == nil {
		return nil
	}
	return &Error{Code: CodeOf(err), Field: FieldOf(err), Message: op, cause: err}
}

// HasCode reports whether err carries the given code.
func HasCode(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// Is is a readability alias for HasCode.
func Is(err error, code Code) bool { return HasCode(err, code) }

// CodeOf extracts the code from err, defaulting to CodeInternal.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}

// FieldOf extracts the offending field from a validation error, if any.
func FieldOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Field
	}
	return ""
}

// ToHTTPStatus maps a code to the status the transport layer should return.
func ToHTTPStatus(code Code) int {
	switch code {
	case CodeValidation, CodeBadRequest:
		return http.StatusBadRequest
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeNotFound:
		return http.StatusNotFound
	case CodeRateLimited:
		return http.StatusTooManyRequests
	case CodeTimeout:
		return http.StatusGatewayTimeout
	case CodeSubmission:
		return http.StatusConflict
	case CodeRead, CodeConfiguration, CodeInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
