// Package errors provides standardized error codes for budget checks.
//
// Every check failure is reported back to the caller as data, never as a
// transport failure, so these errors carry both a machine code and the
// human-readable text an automated caller can relay.
package errors

import (
	"errors"
	"fmt"
	"strconv"
	"time"
)

// ErrorCode represents standardized internal error codes.
type ErrorCode string

// Budget check errors
const (
	ErrCodeMissingParameters   ErrorCode = "MISSING_PARAMETERS"
	ErrCodeInvalidNumberFormat ErrorCode = "INVALID_NUMBER_FORMAT"
	ErrCodeInvalidRange        ErrorCode = "INVALID_RANGE"
	ErrCodeServerError         ErrorCode = "SERVER_ERROR"
)

// Transport errors
const (
	ErrCodeJobCompletionFailed ErrorCode = "JOB_COMPLETION_FAILED"
)

// proceedHint is appended to every message returned to callers.
const proceedHint = "Proceeding without budget check."

// errorLabels holds the wire value of the "error" field per code.
var errorLabels = map[ErrorCode]string{
	ErrCodeMissingParameters:   "Missing parameters",
	ErrCodeInvalidNumberFormat: "Invalid number format",
	ErrCodeInvalidRange:        "Invalid range",
	ErrCodeServerError:         "Server error",
	ErrCodeJobCompletionFailed: "Job completion failed",
}

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("StandardError[%s]: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// Label returns the short text reported in the response "error" field.
func (e *StandardError) Label() string {
	if label, ok := errorLabels[e.Code]; ok {
		return label
	}
	return errorLabels[ErrCodeServerError]
}

// NewMissingParametersError reports an empty expected_ctc or max_budget.
func NewMissingParametersError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeMissingParameters,
		Message:   "Both expected_ctc and max_budget are required. " + proceedHint,
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidNumberFormatError reports a value that is not a decimal number.
func NewInvalidNumberFormatError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidNumberFormat,
		Message:   "expected_ctc and max_budget must be valid numbers. " + proceedHint,
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidRangeError reports a value outside [min, max].
func NewInvalidRangeError(min, max float64, details string) *StandardError {
	return &StandardError{
		Code: ErrCodeInvalidRange,
		Message: fmt.Sprintf("CTC values must be between %s and %s LPA. %s",
			strconv.FormatFloat(min, 'f', -1, 64), strconv.FormatFloat(max, 'f', -1, 64), proceedHint),
		Details:   details,
		Retryable: false,
		Metadata:  map[string]interface{}{"min": min, "max": max},
		Timestamp: time.Now().UTC(),
	}
}

// NewServerError wraps an unexpected failure.
func NewServerError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeServerError,
		Message:   fmt.Sprintf("An unexpected error occurred: %s. %s", err.Error(), proceedHint),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewJobCompletionFailedError reports that a Zeebe job could not be completed.
func NewJobCompletionFailedError(jobKey int64, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeJobCompletionFailed,
		Message:   "Failed to complete budget check job",
		Details:   err.Error(),
		Retryable: true,
		Metadata:  map[string]interface{}{"jobKey": jobKey},
		Timestamp: time.Now().UTC(),
	}
}

// AsStandardError normalizes any error into a StandardError.
// Errors that are not already standardized become SERVER_ERROR.
func AsStandardError(err error) *StandardError {
	if err == nil {
		return nil
	}
	var stdErr *StandardError
	if errors.As(err, &stdErr) {
		return stdErr
	}
	return NewServerError(err)
}

// IsRetryableErrorCode reports whether repeating the same call could succeed.
func IsRetryableErrorCode(code ErrorCode) bool {
	switch code {
	case ErrCodeServerError, ErrCodeJobCompletionFailed:
		return true
	default:
		return false
	}
}

// GetErrorCategory groups codes for metrics and logs.
func GetErrorCategory(code ErrorCode) string {
	switch code {
	case ErrCodeMissingParameters, ErrCodeInvalidNumberFormat, ErrCodeInvalidRange:
		return "validation"
	case ErrCodeJobCompletionFailed:
		return "transport"
	default:
		return "internal"
	}
}
