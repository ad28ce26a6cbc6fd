// Package client talks to a running prompt-relay over HTTP.
package client

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/a1utilityhub/prompt-relay/internal/gemini"
	"github.com/a1utilityhub/prompt-relay/internal/health"
	"github.com/a1utilityhub/prompt-relay/internal/relay"
)

// HTTP is a relay client
type HTTP struct {
	Base string
	HTTP *http.Client
}

// NewHTTP returns a client for the relay at base (e.g., "http://localhost:3000").
func NewHTTP(base string) *HTTP {
	return &HTTP{Base: strings.TrimRight(base, "/"), HTTP: &http.Client{}}
}

// StatusError is a non-2xx answer from the relay.
type StatusError struct {
	Status  int
	Message string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("relay returned %d: %s", e.Status, e.Message)
}

type promptRequest struct {
	Prompt     string             `json:"prompt"`
	InlineData *gemini.InlineData `json:"inlineData,omitempty"`
}

// Prompt sends prompt with an optional attachment and returns the raw
// generateContent response.
func (c *HTTP) Prompt(ctx context.Context, prompt string, attachment *gemini.InlineData) ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := json.NewEncoder(buf).Encode(promptRequest{Prompt: prompt, InlineData: attachment}); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Base+relay.Path, buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode/100 != 2 {
		var e relay.ErrorResponse
		if err := json.Unmarshal(body, &e); err != nil || e.Error == "" {
			e.Error = resp.Status
		}
		return nil, &StatusError{Status: resp.StatusCode, Message: e.Error}
	}
	return body, nil
}

// Healthy reports whether the relay answers its health check.
func (c *HTTP) Healthy() (bool, error) {
	return health.Check(c.HTTP, c.Base+health.Path)
}

// Attachment reads a file into an inline data part. The MIME type comes
// from the extension, falling back to content sniffing.
func Attachment(path string) (*gemini.InlineData, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read attachment: %w", err)
	}

	mimeType := mime.TypeByExtension(filepath.Ext(path))
	if mimeType == "" {
		mimeType = http.DetectContentType(data)
	}
	// Drop parameters such as "; charset=utf-8".
	if mt, _, err := mime.ParseMediaType(mimeType); err == nil {
		mimeType = mt
	}

	return &gemini.InlineData{
		InlineData: gemini.Blob{
			MimeType: mimeType,
			Data:     base64.StdEncoding.EncodeToString(data),
		},
	}, nil
}
