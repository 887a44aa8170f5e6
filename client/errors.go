package client

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorCode classifies request failures into the categories callers
// branch on. Codes are stable strings so they survive serialization.
type ErrorCode string

const (
	// CodeNetwork covers transport-level failures where no HTTP
	// response was received (DNS, connection refused, context cancel).
	CodeNetwork ErrorCode = "network"

	// CodeValidation covers payloads that arrived but failed schema
	// validation, plus 400/422 responses.
	CodeValidation ErrorCode = "validation"

	// CodeNotFound corresponds to 404 responses. Not-found is a
	// first-class case so callers can distinguish it from generic
	// failure without string matching.
	CodeNotFound ErrorCode = "not_found"

	// CodeAuth corresponds to 401 and 403 responses.
	CodeAuth ErrorCode = "auth"

	// CodeRateLimited corresponds to 429 responses.
	CodeRateLimited ErrorCode = "rate_limited"

	// CodeServer corresponds to 5xx responses.
	CodeServer ErrorCode = "server"
)

// Error is the uniform failure shape every adapter method returns.
// Message is human-readable, Code selects the taxonomy branch, and
// Details carries whatever the backend included in its error body.
type Error struct {
	Message string
	Code    ErrorCode
	Status  int
	Details string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s (%s): %s", e.Message, e.Code, e.Details)
	}
	return fmt.Sprintf("%s (%s)", e.Message, e.Code)
}

// IsNotFound reports whether err is an adapter error for a missing record.
func IsNotFound(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Code == CodeNotFound
}

// IsRetryable reports whether the failure class is worth retrying.
// Validation, not-found and auth failures are deterministic and will
// not change on a retry; rate limits, server errors and network
// failures may.
func IsRetryable(err error) bool {
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		return false
	}
	switch apiErr.Code {
	case CodeRateLimited, CodeServer, CodeNetwork:
		return true
	default:
		return false
	}
}

// statusError maps an HTTP status code to the uniform error shape.
// Each status class gets a distinct human-readable message per the
// failure taxonomy; none of them are retried here.
func statusError(status int, details string) *Error {
	e := &Error{Status: status, Details: details}
	switch {
	case status == http.StatusNotFound:
		e.Code = CodeNotFound
		e.Message = "the requested record does not exist"
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		e.Code = CodeAuth
		e.Message = "you are not authorized to perform this action"
	case status == http.StatusTooManyRequests:
		e.Code = CodeRateLimited
		e.Message = "too many requests, slow down and try again"
	case status == http.StatusBadRequest || status == http.StatusUnprocessableEntity:
		e.Code = CodeValidation
		e.Message = "the request was rejected by the server"
	case status >= 500:
		e.Code = CodeServer
		e.Message = "the server failed to process the request"
	default:
		e.Code = CodeServer
		e.Message = fmt.Sprintf("unexpected response status %d", status)
	}
	return e
}

// networkError wraps a transport failure where no response arrived.
func networkError(err error) *Error {
	return &Error{
		Message: "could not reach the server",
		Code:    CodeNetwork,
		Details: err.Error(),
	}
}

// ValidationError wraps a schema mismatch detected after a response
// arrived. Exposed so the facade layer can produce the same error
// shape the transport does.
func ValidationError(err error) *Error {
	return &Error{
		Message: "the server returned an unexpected payload",
		Code:    CodeValidation,
		Details: err.Error(),
	}
}
