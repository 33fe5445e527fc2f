// Package errors defines the structured application error taxonomy shared by
// the browser, runner, and registry layers.
package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a category of application error.
type ErrorCode string

const (
	// ErrCodeNotFound indicates a resource (usually a job) was not found.
	ErrCodeNotFound ErrorCode = "not_found"
	// ErrCodeConflict indicates a lifecycle conflict (e.g., double start).
	ErrCodeConflict ErrorCode = "conflict"
	// ErrCodeValidation indicates invalid input data.
	ErrCodeValidation ErrorCode = "validation"
	// ErrCodeSelectorUnresolved indicates every candidate selector timed out.
	ErrCodeSelectorUnresolved ErrorCode = "selector_unresolved"
	// ErrCodeDropdownUnresolved indicates the searchable-dropdown opening surface could not be resolved.
	ErrCodeDropdownUnresolved ErrorCode = "dropdown_unresolved"
	// ErrCodeFieldFill indicates a specific field could not be set.
	ErrCodeFieldFill ErrorCode = "field_fill"
	// ErrCodeNavigation indicates the page failed to load or the auth interstitial never cleared.
	ErrCodeNavigation ErrorCode = "navigation"
	// ErrCodeSubmission indicates no submit control resolved or the click failed.
	ErrCodeSubmission ErrorCode = "submission"
	// ErrCodeSession indicates the browser session could not be created or maintained.
	// Session errors are fatal to the whole job.
	ErrCodeSession ErrorCode = "session"
	// ErrCodeCanceled indicates the job run was canceled.
	ErrCodeCanceled ErrorCode = "canceled"
	// ErrCodeInternal indicates an internal error.
	ErrCodeInternal ErrorCode = "internal"
)

// AppError represents a structured application error with a code, message, and
// optional cause. It supports error wrapping and unwrapping for use with
// errors.Is and errors.As.
type AppError struct {
	// Code categorizes the error type
	Code ErrorCode
	// Message is a human-readable error message
	Message string
	// Cause is the underlying error that caused this error (optional)
	Cause error
	// Field is the logical form field involved (optional)
	Field string
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying cause, enabling errors.Is and errors.As.
func (e *AppError) Unwrap() error {
	return e.Cause
}

// NotFound creates a new NotFound error.
func NotFound(message string) *AppError {
	return &AppError{Code: ErrCodeNotFound, Message: message}
}

// NotFoundf creates a new NotFound error with formatted message.
func NotFoundf(format string, args ...any) *AppError {
	return &AppError{Code: ErrCodeNotFound, Message: fmt.Sprintf(format, args...)}
}

// Conflict creates a new Conflict error.
func Conflict(message string) *AppError {
	return &AppError{Code: ErrCodeConflict, Message: message}
}

// Conflictf creates a new Conflict error with formatted message.
func Conflictf(format string, args ...any) *AppError {
	return &AppError{Code: ErrCodeConflict, Message: fmt.Sprintf(format, args...)}
}

// Validation creates a new Validation error.
func Validation(message string) *AppError {
	return &AppError{Code: ErrCodeValidation, Message: message}
}

// SelectorUnresolvedf creates a new SelectorUnresolved error with formatted message.
func SelectorUnresolvedf(format string, args ...any) *AppError {
	return &AppError{Code: ErrCodeSelectorUnresolved, Message: fmt.Sprintf(format, args...)}
}

// DropdownUnresolved creates a new DropdownUnresolved error for a field.
func DropdownUnresolved(field, message string) *AppError {
	return &AppError{Code: ErrCodeDropdownUnresolved, Message: message, Field: field}
}

// FieldFill creates a new FieldFill error for a field, preserving the cause.
func FieldFill(field string, cause error) *AppError {
	return &AppError{
		Code:    ErrCodeFieldFill,
		Message: fmt.Sprintf("failed to fill %s", field),
		Field:   field,
		Cause:   cause,
	}
}

// Navigationf creates a new Navigation error with formatted message.
func Navigationf(format string, args ...any) *AppError {
	return &AppError{Code: ErrCodeNavigation, Message: fmt.Sprintf(format, args...)}
}

// Submission creates a new Submission error.
func Submission(message string) *AppError {
	return &AppError{Code: ErrCodeSubmission, Message: message}
}

// Session wraps a browser session failure. Fatal to the owning job.
func Session(message string, cause error) *AppError {
	return &AppError{Code: ErrCodeSession, Message: message, Cause: cause}
}

// Canceled creates a new Canceled error.
func Canceled(message string) *AppError {
	return &AppError{Code: ErrCodeCanceled, Message: message}
}

// Internalf creates a new Internal error with formatted message.
func Internalf(format string, args ...any) *AppError {
	return &AppError{Code: ErrCodeInternal, Message: fmt.Sprintf(format, args...)}
}

// Wrap wraps an existing error with an AppError, preserving the cause.
func Wrap(err error, code ErrorCode, message string) *AppError {
	if err == nil {
		return nil
	}
	return &AppError{Code: code, Message: message, Cause: err}
}

// Wrapf wraps an existing error with an AppError and formatted message.
func Wrapf(err error, code ErrorCode, format string, args ...any) *AppError {
	if err == nil {
		return nil
	}
	return &AppError{Code: code, Message: fmt.Sprintf(format, args...), Cause: err}
}

// isCode checks if an error has a specific error code.
func isCode(err error, code ErrorCode) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == code
}

// IsNotFound checks if an error is a NotFound error.
func IsNotFound(err error) bool { return isCode(err, ErrCodeNotFound) }

// IsConflict checks if an error is a Conflict error.
func IsConflict(err error) bool { return isCode(err, ErrCodeConflict) }

// IsValidation checks if an error is a Validation error.
func IsValidation(err error) bool { return isCode(err, ErrCodeValidation) }

// IsSelectorUnresolved checks if an error is a SelectorUnresolved error.
func IsSelectorUnresolved(err error) bool { return isCode(err, ErrCodeSelectorUnresolved) }

// IsDropdownUnresolved checks if an error is a DropdownUnresolved error.
func IsDropdownUnresolved(err error) bool { return isCode(err, ErrCodeDropdownUnresolved) }

// IsFieldFill checks if an error is a FieldFill error.
func IsFieldFill(err error) bool { return isCode(err, ErrCodeFieldFill) }

// IsNavigation checks if an error is a Navigation error.
func IsNavigation(err error) bool { return isCode(err, ErrCodeNavigation) }

// IsSubmission checks if an error is a Submission error.
func IsSubmission(err error) bool { return isCode(err, ErrCodeSubmission) }

// IsSession checks if an error is a Session error.
func IsSession(err error) bool { return isCode(err, ErrCodeSession) }

// IsCanceled checks if an error is a Canceled error.
func IsCanceled(err error) bool { return isCode(err, ErrCodeCanceled) }

// GetCode returns the ErrorCode from an error, or empty string if not an AppError.
func GetCode(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}

// GetField returns the Field from an error, or empty string if not set.
func GetField(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Field
	}
	return ""
}
