package integration

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"testing"
	"time"

	"github.com/a1utilityhub/prompt-relay/internal/app"
	"github.com/a1utilityhub/prompt-relay/internal/client"
	"github.com/a1utilityhub/prompt-relay/internal/config"
)

// EnvLiveTests enables tests that call the real Gemini API.
const EnvLiveTests = "PROMPT_RELAY_INTEGRATION_TESTS"

// TestHarness runs a relay on a real loopback listener.
type TestHarness struct {
	t       *testing.T
	config  *config.Config
	app     *app.App
	baseURL string
	client  *client.HTTP
}

// NewHarness starts a relay for cfg on 127.0.0.1 with an ephemeral port.
// The server is shut down when the test ends.
func NewHarness(t *testing.T, cfg *config.Config, opts ...app.Option) *TestHarness {
	t.Helper()

	opts = append([]app.Option{app.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))}, opts...)
	a, err := app.New(context.Background(), cfg, opts...)
	if err != nil {
		t.Fatalf("Failed to create app: %v", err)
	}

	srv, err := a.Server()
	if err != nil {
		t.Fatalf("Failed to create server: %v", err)
	}

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Failed to listen: %v", err)
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()

	h := &TestHarness{
		t:       t,
		config:  cfg,
		app:     a,
		baseURL: "http://" + ln.Addr().String(),
	}
	h.client = client.NewHTTP(h.baseURL)

	t.Cleanup(func() {
		if err := srv.Shutdown(context.Background()); err != nil {
			t.Logf("Warning: shutdown failed: %v", err)
		}
		if err := <-errCh; err != nil {
			t.Logf("Warning: serve returned: %v", err)
		}
		if err := a.Close(context.Background()); err != nil {
			t.Logf("Warning: close failed: %v", err)
		}
	})

	if err := h.WaitHealthy(5 * time.Second); err != nil {
		t.Fatal(err)
	}
	return h
}

// NewLiveHarness starts a relay against the real API, configured from the
// environment. It skips unless EnvLiveTests and GEMINI_API_KEY are set.
func NewLiveHarness(t *testing.T) *TestHarness {
	t.Helper()

	if os.Getenv(EnvLiveTests) == "" {
		t.Skipf("live tests disabled (set %s=1 to enable)", EnvLiveTests)
	}

	cfg, err := config.Load(config.LoadOptions{})
	if err != nil {
		t.Skipf("failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Skipf("config not usable for live tests: %v", err)
	}

	return NewHarness(t, cfg)
}

// BaseURL returns the relay's root URL.
func (h *TestHarness) BaseURL() string {
	return h.baseURL
}

// Client returns a client for the relay.
func (h *TestHarness) Client() *client.HTTP {
	return h.client
}

// Config returns the relay configuration.
func (h *TestHarness) Config() *config.Config {
	return h.config
}

// Close flushes the audit log and telemetry ahead of test cleanup.
func (h *TestHarness) Close() error {
	return h.app.Close(context.Background())
}

// WaitHealthy polls /health until it answers ok.
func (h *TestHarness) WaitHealthy(timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	ticker := time.NewTicker(20 * time.Millisecond)
	defer ticker.Stop()

	for {
		if ok, _ := h.client.Healthy(); ok {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("relay not healthy after %v", timeout)
		case <-ticker.C:
		}
	}
}
