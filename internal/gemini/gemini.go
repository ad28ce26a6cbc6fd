// Package gemini holds everything prompt-relay knows about the Gemini
// generateContent API: the request payload shape, the endpoint URL and the
// error-body translation. Switching providers means editing this package only.
package gemini

import (
	"bytes"
	"encoding/json"
	"net/url"
	"strconv"
	"strings"
)

const (
	// DefaultBaseURL is the public Generative Language API host.
	DefaultBaseURL = "https://generativelanguage.googleapis.com"

	// DefaultModel is the model the relay calls unless configured otherwise.
	DefaultModel = "gemini-1.5-flash-latest"

	// FallbackErrorMessage is returned when an error body carries no message.
	FallbackErrorMessage = "Gemini error"

	// APIKeyParam is the query parameter carrying the credential.
	APIKeyParam = "key"

	roleUser = "user"
)

// Request is the upstream generateContent payload.
type Request struct {
	Contents []Content `json:"contents"`
}

// Content is one conversation turn.
type Content struct {
	Role  string `json:"role"`
	Parts []any  `json:"parts"`
}

// TextPart is the text element of a parts array.
type TextPart struct {
	Text string `json:"text"`
}

// NewRequest builds the payload for a single user turn.
// inlineData is appended verbatim after the text part when HasValue reports it present.
func NewRequest(prompt string, inlineData json.RawMessage) *Request {
	parts := []any{TextPart{Text: prompt}}
	if HasValue(inlineData) {
		parts = append(parts, inlineData)
	}

	return &Request{
		Contents: []Content{{
			Role:  roleUser,
			Parts: parts,
		}},
	}
}

// HasValue reports whether an optional raw JSON field should be treated as
// present. Absent, null, false, 0 and "" count as absent.
func HasValue(raw json.RawMessage) bool {
	v := bytes.TrimSpace(raw)
	if len(v) == 0 {
		return false
	}
	switch string(v) {
	case "null", "false", `""`:
		return false
	}
	if c := v[0]; c == '-' || (c >= '0' && c <= '9') {
		f, err := strconv.ParseFloat(string(v), 64)
		return err != nil || f != 0
	}
	return true
}

// Endpoint returns the generateContent URL for model with the key attached.
func Endpoint(baseURL, model, apiKey string) (string, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return "", err
	}
	u.Path += "/v1beta/models/" + model + ":generateContent"

	q := u.Query()
	q.Set(APIKeyParam, apiKey)
	u.RawQuery = q.Encode()

	return u.String(), nil
}

// errorBody is the provider's error envelope.
type errorBody struct {
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// ErrorMessage extracts error.message from a non-2xx response body.
// Bodies that are not JSON or carry no message yield FallbackErrorMessage.
func ErrorMessage(body []byte) string {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil {
		return FallbackErrorMessage
	}
	if eb.Error == nil || eb.Error.Message == "" {
		return FallbackErrorMessage
	}
	return eb.Error.Message
}

// RedactURL hides the credential in u so the URL can be logged.
func RedactURL(u string) string {
	parsed, err := url.Parse(u)
	if err != nil {
		return "<unparseable url>"
	}
	q := parsed.Query()
	if q.Has(APIKeyParam) {
		q.Set(APIKeyParam, "REDACTED")
		parsed.RawQuery = q.Encode()
	}
	return parsed.String()
}
