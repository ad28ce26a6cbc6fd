package integration

import (
	"context"
	"encoding/json"
	"net/http"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a1utilityhub/prompt-relay/internal/app"
	"github.com/a1utilityhub/prompt-relay/internal/audit"
	"github.com/a1utilityhub/prompt-relay/internal/client"
	"github.com/a1utilityhub/prompt-relay/internal/config"
	"github.com/a1utilityhub/prompt-relay/internal/gemini"
	"github.com/a1utilityhub/prompt-relay/internal/testutil"
)

const allowedOrigin = "https://app.example.com"

func newWorkflow(t *testing.T) (*TestHarness, *testutil.FakeGemini) {
	t.Helper()

	upstream := testutil.NewFakeGemini(t)

	cfg := config.Default()
	cfg.APIKey = testutil.TestAPIKey
	cfg.AllowedOrigin = allowedOrigin
	cfg.UpstreamURL = upstream.URL
	cfg.AuditLog = filepath.Join(t.TempDir(), "audit.jsonl")

	h := NewHarness(t, cfg, app.WithTransport(upstream.Client().Transport))
	return h, upstream
}

func TestWorkflow_PromptRoundTrip(t *testing.T) {
	h, upstream := newWorkflow(t)

	body, err := h.Client().Prompt(context.Background(), "hello", nil)
	require.NoError(t, err)

	resp, err := gemini.ParseResponse(body)
	require.NoError(t, err)
	assert.Equal(t, "Hello from the model.", resp.Text())

	reqs := upstream.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, testutil.TestAPIKey, reqs[0].APIKey)
	assert.Equal(t, "/v1beta/models/"+gemini.DefaultModel+":generateContent", reqs[0].Path)
}

func TestWorkflow_Attachment(t *testing.T) {
	h, upstream := newWorkflow(t)

	att := &gemini.InlineData{InlineData: gemini.Blob{MimeType: "image/jpeg", Data: "/9j/4AAQ"}}
	_, err := h.Client().Prompt(context.Background(), "what is this", att)
	require.NoError(t, err)

	parts, err := upstream.Requests()[0].Parts()
	require.NoError(t, err)
	require.Len(t, parts, 2)
	assert.JSONEq(t, `{"text":"what is this"}`, string(parts[0]))
	assert.JSONEq(t, `{"inlineData":{"mimeType":"image/jpeg","data":"/9j/4AAQ"}}`, string(parts[1]))
}

func TestWorkflow_UpstreamErrors(t *testing.T) {
	h, upstream := newWorkflow(t)

	upstream.Reply(http.StatusTooManyRequests, testutil.MustFixture(t, testutil.GeminiErrorQuota))
	_, err := h.Client().Prompt(context.Background(), "hi", nil)
	var se *client.StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusTooManyRequests, se.Status)
	assert.Equal(t, "Resource has been exhausted (e.g. check quota).", se.Message)

	upstream.Reply(http.StatusInternalServerError, testutil.MustFixture(t, testutil.GeminiErrorNoMessage))
	_, err = h.Client().Prompt(context.Background(), "hi", nil)
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusInternalServerError, se.Status)
	assert.Equal(t, gemini.FallbackErrorMessage, se.Message)
}

func TestWorkflow_BrowserOrigins(t *testing.T) {
	h, upstream := newWorkflow(t)

	post := func(origin string) *http.Response {
		req, err := http.NewRequest(http.MethodPost, h.BaseURL()+"/api/prompt", strings.NewReader(`{"prompt":"hi"}`))
		require.NoError(t, err)
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Origin", origin)
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		resp.Body.Close()
		return resp
	}

	resp := post(allowedOrigin)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, allowedOrigin, resp.Header.Get("Access-Control-Allow-Origin"))

	resp = post("https://elsewhere.example.com")
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	assert.Len(t, upstream.Requests(), 1, "the rejected request must not reach upstream")
}

func TestWorkflow_AuditTrail(t *testing.T) {
	h, upstream := newWorkflow(t)

	_, err := h.Client().Prompt(context.Background(), "one", nil)
	require.NoError(t, err)

	upstream.Reply(http.StatusBadRequest, []byte(`{"error":{"message":"bad"}}`))
	_, err = h.Client().Prompt(context.Background(), "two", nil)
	require.Error(t, err)

	resp, err := http.Post(h.BaseURL()+"/api/prompt", "application/json", strings.NewReader(`nope`))
	require.NoError(t, err)
	resp.Body.Close()

	require.NoError(t, h.Close())

	entries, err := audit.ReadEntries(h.Config().AuditLog)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	assert.Equal(t, audit.OutcomeSuccess, entries[0].Outcome)
	assert.Equal(t, audit.OutcomeUpstream, entries[1].Outcome)
	assert.Equal(t, http.StatusBadRequest, entries[1].UpstreamStatus)
	assert.Equal(t, audit.OutcomeRejected, entries[2].Outcome)
	for _, e := range entries {
		assert.NotEmpty(t, e.RequestID)
	}

	raw, err := json.Marshal(entries)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), testutil.TestAPIKey)
}
