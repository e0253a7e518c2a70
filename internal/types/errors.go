package types

import (
	"fmt"
	"net/http"
	"strings"
)

// ErrorCode is a typed string for categorizing application errors.
type ErrorCode string

// Error code constants, grouped by prefix. The prefix determines both the
// propagation policy (see the scheduler and notifier) and the HTTP status the
// API layer maps the error to.
const (
	// Configuration (fatal at startup)
	ErrCodeConfigParsing    ErrorCode = "config_parsing_failed"
	ErrCodeConfigValidation ErrorCode = "config_validation_failed"

	// Weather fetch (per-location, skip-and-continue)
	ErrCodeFetchUnavailable ErrorCode = "fetch_upstream_unavailable"
	ErrCodeFetchBadStatus   ErrorCode = "fetch_bad_status"
	ErrCodeParsePayload     ErrorCode = "parse_malformed_payload"

	// Flat-file store
	ErrCodeStoreRead  ErrorCode = "store_read_failed"
	ErrCodeStoreWrite ErrorCode = "store_write_failed"

	// Email delivery (per-recipient, logged and skipped)
	ErrCodeSendFailed  ErrorCode = "send_delivery_failed"
	ErrCodeSendBlocked ErrorCode = "send_recipient_blocked"

	// API layer
	ErrCodeNotFoundTable        ErrorCode = "not_found_table"
	ErrCodeNotFoundIntervention ErrorCode = "not_found_intervention"
	ErrCodeNotFoundLocation     ErrorCode = "not_found_location"

	// Upstream/internal
	ErrCodeUpstreamRateLimited ErrorCode = "upstream_rate_limited"
	ErrCodeUpstreamUnavailable ErrorCode = "upstream_unavailable"
	ErrCodeInternalUnexpected  ErrorCode = "internal_unexpected_error"
)

// HTTPStatus maps an ErrorCode to its corresponding HTTP status code.
// Unrecognized codes map to 500 as a safe default.
func (c ErrorCode) HTTPStatus() int {
	s := string(c)
	switch {
	case strings.HasPrefix(s, "not_found_"):
		return http.StatusNotFound
	case c == ErrCodeUpstreamRateLimited:
		return http.StatusTooManyRequests
	case strings.HasPrefix(s, "fetch_"), strings.HasPrefix(s, "upstream_"):
		return http.StatusBadGateway
	case strings.HasPrefix(s, "parse_"), strings.HasPrefix(s, "config_"):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// AppError is the standard application error type. Domain and handler errors
// are expressed as AppError to enable consistent formatting, HTTP status
// mapping, and error chain support.
type AppError struct {
	Code    ErrorCode      `json:"code"`
	Message string         `json:"message"`
	Err     error          `json:"-"`
	Details map[string]any `json:"details,omitempty"`
}

// Error implements the error interface.
func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Is/errors.As support.
func (e *AppError) Unwrap() error {
	return e.Err
}

// HTTPStatus returns the HTTP status code corresponding to this error's code.
func (e *AppError) HTTPStatus() int {
	return e.Code.HTTPStatus()
}

// NewAppError creates a new AppError with the given code, message, and
// optional underlying error.
func NewAppError(code ErrorCode, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}
