package relay

import (
	"encoding/json"
	"errors"
	"net/http"
)

// Client-facing messages
const (
	MsgInternal   = "Internal server error"
	MsgBadRequest = "Invalid request body"
)

// ErrorResponse is the JSON body of every relay error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// UpstreamError is a non-2xx answer from the provider. Its status and
// message are passed through to the caller.
type UpstreamError struct {
	Status  int
	Message string
}

func (e *UpstreamError) Error() string {
	return e.Message
}

// internalError carries a cause that is logged but never shown to callers.
type internalError struct {
	cause error
}

func (e *internalError) Error() string {
	return "internal: " + e.cause.Error()
}

func (e *internalError) Unwrap() error {
	return e.cause
}

func errInternal(cause error) error {
	return &internalError{cause: cause}
}

// errBadRequest is returned for bodies that are not JSON or lack a string prompt.
var errBadRequest = errors.New(MsgBadRequest)

// StatusAndMessage maps a relay error onto the HTTP status and message the
// caller sees. Anything that is not an upstream or input error is internal.
func StatusAndMessage(err error) (int, string) {
	var upstreamErr *UpstreamError
	switch {
	case errors.As(err, &upstreamErr):
		return upstreamErr.Status, upstreamErr.Message
	case errors.Is(err, errBadRequest):
		return http.StatusBadRequest, MsgBadRequest
	default:
		return http.StatusInternalServerError, MsgInternal
	}
}

// writeError writes the mapped error response and returns the status sent.
func writeError(w http.ResponseWriter, err error) int {
	status, msg := StatusAndMessage(err)
	WriteJSONError(w, status, msg)
	return status
}

// WriteJSONError writes {"error": msg} with the given status.
func WriteJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: msg})
}
