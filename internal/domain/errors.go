// Package domain defines core types, interfaces, and errors for the submission
// sync engine.
package domain

import "fmt"

// NotFoundError indicates a resource was not found.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string { return e.Message }

// AccessDeniedError indicates insufficient permissions on a remote object
// (for example a submission shared through a view-only link).
type AccessDeniedError struct {
	Message string
}

func (e *AccessDeniedError) Error() string { return e.Message }

// ValidationError indicates invalid input.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// ConflictError indicates a conflict (e.g., duplicate resource).
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

// ConfigUnavailableError indicates the deliverable configuration could not be
// fetched. It is fatal to a sync call.
type ConfigUnavailableError struct {
	Message string
	Err     error
}

func (e *ConfigUnavailableError) Error() string { return joinCause(e.Message, e.Err) }
func (e *ConfigUnavailableError) Unwrap() error { return e.Err }

// SourceUnavailableError indicates the submission rows could not be read.
// It is fatal to a sync call.
type SourceUnavailableError struct {
	Message string
	Err     error
}

func (e *SourceUnavailableError) Error() string { return joinCause(e.Message, e.Err) }
func (e *SourceUnavailableError) Unwrap() error { return e.Err }

// RemoteUnavailableError indicates a transient remote store failure
// (network, quota, 5xx).
type RemoteUnavailableError struct {
	Message string
	Err     error
}

func (e *RemoteUnavailableError) Error() string { return joinCause(e.Message, e.Err) }
func (e *RemoteUnavailableError) Unwrap() error { return e.Err }

func joinCause(msg string, err error) string {
	if err == nil {
		return msg
	}
	return msg + ": " + err.Error()
}

// ErrNotFound creates a NotFoundError with a formatted message.
func ErrNotFound(format string, args ...interface{}) *NotFoundError {
	return &NotFoundError{Message: fmt.Sprintf(format, args...)}
}

// ErrAccessDenied creates an AccessDeniedError with a formatted message.
func ErrAccessDenied(format string, args ...interface{}) *AccessDeniedError {
	return &AccessDeniedError{Message: fmt.Sprintf(format, args...)}
}

// ErrValidation creates a ValidationError with a formatted message.
func ErrValidation(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// ErrConflict creates a ConflictError with a formatted message.
func ErrConflict(format string, args ...interface{}) *ConflictError {
	return &ConflictError{Message: fmt.Sprintf(format, args...)}
}

// ErrConfigUnavailable wraps a configuration fetch failure.
func ErrConfigUnavailable(err error, format string, args ...interface{}) *ConfigUnavailableError {
	return &ConfigUnavailableError{Message: fmt.Sprintf(format, args...), Err: err}
}

// ErrSourceUnavailable wraps a submission source read failure.
func ErrSourceUnavailable(err error, format string, args ...interface{}) *SourceUnavailableError {
	return &SourceUnavailableError{Message: fmt.Sprintf(format, args...), Err: err}
}

// ErrRemoteUnavailable wraps a transient remote store failure.
func ErrRemoteUnavailable(err error, format string, args ...interface{}) *RemoteUnavailableError {
	return &RemoteUnavailableError{Message: fmt.Sprintf(format, args...), Err: err}
}
