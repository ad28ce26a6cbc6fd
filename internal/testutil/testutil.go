// Package testutil provides test utilities for integration tests
package testutil

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"testing"

	"github.com/a1utilityhub/prompt-relay/internal/app"
	"github.com/a1utilityhub/prompt-relay/internal/config"
	"github.com/a1utilityhub/prompt-relay/internal/server"
)

// TestAPIKey is the credential configured in every TestEnv.
const TestAPIKey = "test-gemini-key"

// TestOrigin is the allowed origin configured in every TestEnv.
const TestOrigin = "https://app.example.com"

// TestEnv holds the test environment
type TestEnv struct {
	T        *testing.T
	TmpDir   string
	Upstream *FakeGemini
	Config   *config.Config
	App      *app.App
	Server   *server.Server
}

// NewTestEnv creates a relay wired to a fake upstream, with auditing to a
// temporary file.
func NewTestEnv(t *testing.T) *TestEnv {
	t.Helper()

	tmpDir := t.TempDir()
	upstream := NewFakeGemini(t)

	cfg := config.Default()
	cfg.APIKey = TestAPIKey
	cfg.AllowedOrigin = TestOrigin
	cfg.UpstreamURL = upstream.URL
	cfg.AuditLog = filepath.Join(tmpDir, "audit.jsonl")

	a, err := app.New(context.Background(), cfg,
		app.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		app.WithTransport(upstream.Client().Transport),
	)
	if err != nil {
		t.Fatalf("Failed to create app: %v", err)
	}
	t.Cleanup(func() { _ = a.Close(context.Background()) })

	srv, err := a.Server()
	if err != nil {
		t.Fatalf("Failed to create server: %v", err)
	}

	return &TestEnv{
		T:        t,
		TmpDir:   tmpDir,
		Upstream: upstream,
		Config:   cfg,
		App:      a,
		Server:   srv,
	}
}

// Handler returns the server's full handler chain.
func (e *TestEnv) Handler() http.Handler {
	return e.Server.Handler()
}
