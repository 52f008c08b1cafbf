// Package errors defines the structured error types used by the AccuNode
// client. Every failure a store or API module can surface is one of four
// kinds: network error (no response received), HTTP error (4xx/5xx with a
// response body), validation error (local pre-submission checks), or auth
// error (a 401 that survives the refresh-and-retry path).
package errors

import (
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"
)

// ErrorKind classifies an AppError for propagation decisions.
type ErrorKind string

const (
	KindNetwork    ErrorKind = "network"
	KindHTTP       ErrorKind = "http"
	KindValidation ErrorKind = "validation"
	KindAuth       ErrorKind = "auth"
)

// AppError is the structured error carried through the client. API modules
// never return raw transport errors; they wrap them here so stores can set a
// non-fatal error field instead of throwing.
type AppError struct {
	Kind       ErrorKind
	Message    string
	HTTPStatus int
	Fields     map[string]string
	cause      error
}

func (e *AppError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *AppError) Unwrap() error {
	return e.cause
}

// WithCause attaches an underlying error.
func (e *AppError) WithCause(cause error) *AppError {
	e.cause = cause
	return e
}

// WithField records a field-level detail (validation errors key failures by
// input field name).
func (e *AppError) WithField(field, message string) *AppError {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	e.Fields[field] = message
	return e
}

// ================================================================================
// Constructors
// ================================================================================

// NewNetworkError wraps a transport-level failure where no response arrived.
func NewNetworkError(cause error) *AppError {
	return &AppError{
		Kind:    KindNetwork,
		Message: "network error: no response from server",
		cause:   cause,
	}
}

// NewHTTPError wraps a non-2xx response. The message is the server's
// error detail when one was decoded, otherwise the status text.
func NewHTTPError(status int, message string) *AppError {
	if message == "" {
		message = http.StatusText(status)
	}
	return &AppError{
		Kind:       KindHTTP,
		Message:    message,
		HTTPStatus: status,
	}
}

// NewValidationError reports a local pre-submission check failure.
// No network call may be made once one of these is raised.
func NewValidationError(field, message string) *AppError {
	e := &AppError{
		Kind:    KindValidation,
		Message: message,
	}
	return e.WithField(field, message)
}

// NewAuthError reports an unrecoverable authentication failure: a 401 that
// survived the single silent refresh attempt, or a refresh that itself failed.
func NewAuthError(message string) *AppError {
	return &AppError{
		Kind:       KindAuth,
		Message:    message,
		HTTPStatus: http.StatusUnauthorized,
	}
}

// ================================================================================
// Predicates
// ================================================================================

// As attempts to cast err to *AppError.
func As(err error) (*AppError, bool) {
	var appErr *AppError
	ok := errors.As(err, &appErr)
	return appErr, ok
}

// IsNetwork reports whether err is a network-level failure.
func IsNetwork(err error) bool {
	appErr, ok := As(err)
	return ok && appErr.Kind == KindNetwork
}

// IsValidation reports whether err is a local validation failure.
func IsValidation(err error) bool {
	appErr, ok := As(err)
	return ok && appErr.Kind == KindValidation
}

// IsAuth reports whether err is the fatal auth path.
func IsAuth(err error) bool {
	appErr, ok := As(err)
	return ok && appErr.Kind == KindAuth
}

// IsUnauthorized reports whether err carries HTTP 401.
func IsUnauthorized(err error) bool {
	appErr, ok := As(err)
	return ok && appErr.HTTPStatus == http.StatusUnauthorized
}

// ================================================================================
// Message Rewriting
// ================================================================================

var duplicatePattern = regexp.MustCompile(`(?i)(duplicate|already exists|unique constraint)`)

// Humanize rewrites known server error messages into something a person can
// act on. Duplicate-prediction constraint violations are the main offender.
func Humanize(err error) string {
	if err == nil {
		return ""
	}
	appErr, ok := As(err)
	if !ok {
		return err.Error()
	}
	switch appErr.Kind {
	case KindNetwork:
		return "Could not reach the AccuNode server. Check your connection and try again."
	case KindAuth:
		return "Your session has expired. Please log in again."
	}
	if duplicatePattern.MatchString(appErr.Message) {
		return "A prediction for this company and reporting period already exists. Edit the existing one instead."
	}
	return appErr.Message
}

// FieldSummary flattens field errors into a single line for toast-style
// display, e.g. "stock_symbol: required; market_cap: must be a number".
func (e *AppError) FieldSummary() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	parts := make([]string, 0, len(e.Fields))
	for field, msg := range e.Fields {
		parts = append(parts, field+": "+msg)
	}
	return strings.Join(parts, "; ")
}
