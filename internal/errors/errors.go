package errors

import (
	"errors"
	"fmt"
)

// Exit codes for prompt-relay
const (
	ExitSuccess      = 0
	ExitGeneralError = 1
	ExitConfigError  = 6
	ExitServerError  = 9
)

// RelayError is the base error type for prompt-relay
type RelayError struct {
	Code    int
	Message string
	Cause   error
}

func (e *RelayError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *RelayError) Unwrap() error {
	return e.Cause
}

// ExitCode returns the exit code for this error
func (e *RelayError) ExitCode() int {
	return e.Code
}

// New creates a new RelayError
func New(code int, message string) *RelayError {
	return &RelayError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an existing error with a RelayError
func Wrap(code int, message string, cause error) *RelayError {
	return &RelayError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// Common error constructors

// ConfigError returns an error for configuration issues
func ConfigError(message string, cause error) *RelayError {
	return Wrap(ExitConfigError, message, cause)
}

// MissingAPIKey returns the startup error for an absent provider credential
func MissingAPIKey(envVar string) *RelayError {
	return New(ExitConfigError, fmt.Sprintf("%s missing: set it in the environment, a .env file or the config file", envVar))
}

// ServerError returns an error for listener and shutdown failures
func ServerError(op string, cause error) *RelayError {
	return Wrap(ExitServerError, fmt.Sprintf("server %s failed", op), cause)
}

// ValidationError returns an error for input validation failures
func ValidationError(message string) *RelayError {
	return New(ExitGeneralError, message)
}

// GetExitCode extracts the exit code from an error
func GetExitCode(err error) int {
	var relayErr *RelayError
	if errors.As(err, &relayErr) {
		return relayErr.ExitCode()
	}
	return ExitGeneralError
}

// Is checks if an error is of a specific type
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target any) bool {
	return errors.As(err, target)
}
