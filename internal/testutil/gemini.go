package testutil

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

// RecordedRequest is one call received by FakeGemini.
type RecordedRequest struct {
	Method string
	Path   string
	APIKey string
	Body   []byte
}

// FakeGemini is a TLS test server standing in for generateContent.
type FakeGemini struct {
	*httptest.Server

	mu       sync.Mutex
	status   int
	body     []byte
	requests []RecordedRequest
}

// NewFakeGemini starts a fake upstream that answers with the success fixture
// until Reply is called. It is closed when the test ends.
func NewFakeGemini(t testing.TB) *FakeGemini {
	t.Helper()

	f := &FakeGemini{
		status: http.StatusOK,
		body:   MustFixture(t, GeminiSuccess),
	}
	f.Server = httptest.NewTLSServer(http.HandlerFunc(f.handle))
	t.Cleanup(f.Close)
	return f
}

// Reply sets the status and body returned from now on.
func (f *FakeGemini) Reply(status int, body []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.status = status
	f.body = body
}

// Requests returns the calls received so far.
func (f *FakeGemini) Requests() []RecordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]RecordedRequest(nil), f.requests...)
}

// Parts decodes the parts array of a recorded generateContent payload.
func (r RecordedRequest) Parts() ([]json.RawMessage, error) {
	var payload struct {
		Contents []struct {
			Parts []json.RawMessage `json:"parts"`
		} `json:"contents"`
	}
	if err := json.Unmarshal(r.Body, &payload); err != nil {
		return nil, err
	}
	if len(payload.Contents) == 0 {
		return nil, nil
	}
	return payload.Contents[0].Parts, nil
}

func (f *FakeGemini) handle(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	f.mu.Lock()
	f.requests = append(f.requests, RecordedRequest{
		Method: r.Method,
		Path:   r.URL.Path,
		APIKey: r.URL.Query().Get("key"),
		Body:   body,
	})
	status, reply := f.status, f.body
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(reply)
}
