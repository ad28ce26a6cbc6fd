// Package errors provides typed errors with exit codes for prompt-relay.
//
// # Error Types
//
// RelayError is the base error type that wraps an error with an exit code:
//
//	type RelayError struct {
//	    Code    int    // Exit code
//	    Message string // User-facing message
//	    Cause   error  // Wrapped error
//	}
//
// # Exit Codes
//
//	ExitSuccess      = 0 // Success
//	ExitGeneralError = 1 // General/unknown errors
//	ExitConfigError  = 6 // Configuration error (including a missing API key)
//	ExitServerError  = 9 // Listener or shutdown failure
//
// # Extracting Exit Codes
//
//	if err != nil {
//	    os.Exit(errors.GetExitCode(err))
//	}
//
// These errors describe process failures. Per-request relay failures are
// HTTP responses and live in the relay package.
package errors
