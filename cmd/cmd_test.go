package cmd

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/a1utilityhub/prompt-relay/internal/config"
	"github.com/a1utilityhub/prompt-relay/internal/errors"
	"github.com/a1utilityhub/prompt-relay/internal/health"
	"github.com/a1utilityhub/prompt-relay/internal/logging"
	"github.com/a1utilityhub/prompt-relay/internal/testutil"
)

func executeCommand(args ...string) (string, string, error) {
	// Reset flag values before each test
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	for _, c := range append([]*cobra.Command{rootCmd}, rootCmd.Commands()...) {
		c.Flags().VisitAll(reset)
		c.PersistentFlags().VisitAll(reset)
	}

	cmd := rootCmd
	cmd.SetArgs(args)

	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)

	err := cmd.Execute()

	// Reset args for next test
	cmd.SetArgs(nil)
	cmd.SetOut(nil)
	cmd.SetErr(nil)

	return stdout.String(), stderr.String(), err
}

// isolateEnv clears every variable config.Load reads and moves into an
// empty directory so no stray .env is picked up.
func isolateEnv(t *testing.T) string {
	t.Helper()
	for _, key := range []string{
		config.EnvAPIKey, config.EnvPort, config.EnvAllowedOrigin, config.EnvStaticDir,
		config.EnvModel, config.EnvUpstreamURL, config.EnvUpstreamTimeout,
		config.EnvAuditLog, config.EnvTelemetryDir, config.EnvLogFile,
	} {
		t.Setenv(key, "")
	}
	dir := t.TempDir()
	t.Chdir(dir)
	return dir
}

func TestRootCommand_Help(t *testing.T) {
	stdout, _, err := executeCommand("--help")
	if err != nil {
		t.Fatalf("Help command failed: %v", err)
	}

	if !strings.Contains(stdout, "prompt-relay") {
		t.Error("Help output should contain 'prompt-relay'")
	}
	for _, sub := range []string{"serve", "prompt", "config", "health", "version"} {
		if !strings.Contains(stdout, sub) {
			t.Errorf("Help output should list %q", sub)
		}
	}
}

func TestGlobalFlags(t *testing.T) {
	stdout, _, err := executeCommand("--help")
	if err != nil {
		t.Fatalf("Help failed: %v", err)
	}

	if !strings.Contains(stdout, "--verbose") {
		t.Error("Should have --verbose flag")
	}
	if !strings.Contains(stdout, "--json") {
		t.Error("Should have --json flag")
	}
}

func TestServeCommand_Help(t *testing.T) {
	stdout, _, err := executeCommand("serve", "--help")
	if err != nil {
		t.Fatalf("Serve help failed: %v", err)
	}

	for _, flag := range []string{"--config", "--port", "--origin", "--static-dir", "--model", "--upstream-timeout", "--audit-log", "--telemetry-dir", "--log-file", "--env-file"} {
		if !strings.Contains(stdout, flag) {
			t.Errorf("Serve help should document %s", flag)
		}
	}
}

func TestServeCommand_MissingAPIKey(t *testing.T) {
	isolateEnv(t)

	_, _, err := executeCommand("serve")
	if err == nil {
		t.Fatal("serve should fail without an API key")
	}
	if code := errors.GetExitCode(err); code != errors.ExitConfigError {
		t.Errorf("exit code = %d, want %d", code, errors.ExitConfigError)
	}
	if !strings.Contains(err.Error(), config.EnvAPIKey) {
		t.Errorf("error should name %s: %v", config.EnvAPIKey, err)
	}
}

func TestServeCommand_InvalidPort(t *testing.T) {
	isolateEnv(t)
	t.Setenv(config.EnvAPIKey, "k")

	_, _, err := executeCommand("serve", "--port", "70000")
	if code := errors.GetExitCode(err); code != errors.ExitConfigError {
		t.Errorf("exit code = %d, want %d (err: %v)", code, errors.ExitConfigError, err)
	}
}

func TestConfigCommand_Precedence(t *testing.T) {
	dir := isolateEnv(t)

	tomlPath := filepath.Join(dir, "relay.toml")
	if err := os.WriteFile(tomlPath, []byte("port = 4000\nmodel = \"from-toml\"\nallowed_origin = \"https://toml.example.com\"\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("PORT=5000\nGEMINI_MODEL=from-dotenv\nGEMINI_API_KEY=secret-from-dotenv\n"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv(config.EnvPort, "6000")

	stdout, _, err := executeCommand("config", "--config", tomlPath, "--port", "7000")
	if err != nil {
		t.Fatalf("config failed: %v", err)
	}

	var got struct {
		APIKey        string `toml:"api_key"`
		Port          int    `toml:"port"`
		Model         string `toml:"model"`
		AllowedOrigin string `toml:"allowed_origin"`
	}
	if _, err := toml.Decode(stdout, &got); err != nil {
		t.Fatalf("output is not TOML: %v\n%s", err, stdout)
	}

	if got.Port != 7000 {
		t.Errorf("port = %d, want flag value 7000", got.Port)
	}
	if got.Model != "from-dotenv" {
		t.Errorf("model = %q, want dotenv value", got.Model)
	}
	if got.AllowedOrigin != "https://toml.example.com" {
		t.Errorf("allowed_origin = %q, want TOML value", got.AllowedOrigin)
	}
	if strings.Contains(stdout, "secret-from-dotenv") {
		t.Error("config output must not contain the API key")
	}
	if got.APIKey == "" {
		t.Error("api_key should show as redacted, not empty")
	}
}

func TestConfigCommand_Validate(t *testing.T) {
	isolateEnv(t)

	_, _, err := executeCommand("config", "--validate")
	if code := errors.GetExitCode(err); code != errors.ExitConfigError {
		t.Errorf("exit code = %d, want %d", code, errors.ExitConfigError)
	}
}

func TestConfigCommand_InvalidFile(t *testing.T) {
	dir := isolateEnv(t)
	path := testutil.WriteFixture(t, dir, testutil.InvalidConfig)

	_, _, err := executeCommand("config", "--config", path)
	if code := errors.GetExitCode(err); code != errors.ExitConfigError {
		t.Errorf("exit code = %d, want %d (err: %v)", code, errors.ExitConfigError, err)
	}
}

func TestPromptCommand(t *testing.T) {
	env := testutil.NewTestEnv(t)
	relaySrv := httptest.NewServer(env.Handler())
	defer relaySrv.Close()

	stdout, _, err := executeCommand("prompt", "--relay", relaySrv.URL, "say", "hello")
	if err != nil {
		t.Fatalf("prompt failed: %v", err)
	}
	if strings.TrimSpace(stdout) != "Hello from the model." {
		t.Errorf("stdout = %q", stdout)
	}

	reqs := env.Upstream.Requests()
	if len(reqs) != 1 {
		t.Fatalf("expected 1 upstream call, got %d", len(reqs))
	}
	parts, err := reqs[0].Parts()
	if err != nil {
		t.Fatal(err)
	}
	if len(parts) != 1 || string(parts[0]) != `{"text":"say hello"}` {
		t.Errorf("parts = %s", parts)
	}
}

func TestPromptCommand_Attachment(t *testing.T) {
	env := testutil.NewTestEnv(t)
	relaySrv := httptest.NewServer(env.Handler())
	defer relaySrv.Close()

	file := filepath.Join(t.TempDir(), "photo.png")
	if err := os.WriteFile(file, []byte("png-bytes"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, _, err := executeCommand("prompt", "--relay", relaySrv.URL, "--file", file, "describe"); err != nil {
		t.Fatalf("prompt failed: %v", err)
	}

	parts, err := env.Upstream.Requests()[0].Parts()
	if err != nil {
		t.Fatal(err)
	}
	if len(parts) != 2 || !strings.Contains(string(parts[1]), `"mimeType":"image/png"`) {
		t.Errorf("parts = %s", parts)
	}
}

func TestPromptCommand_Raw(t *testing.T) {
	env := testutil.NewTestEnv(t)
	relaySrv := httptest.NewServer(env.Handler())
	defer relaySrv.Close()

	stdout, _, err := executeCommand("prompt", "--relay", relaySrv.URL, "--raw", "hi")
	if err != nil {
		t.Fatalf("prompt failed: %v", err)
	}
	if !strings.Contains(stdout, `"usageMetadata"`) {
		t.Errorf("raw output should be the provider JSON, got %q", stdout)
	}
}

func TestPromptCommand_UpstreamError(t *testing.T) {
	env := testutil.NewTestEnv(t)
	env.Upstream.Reply(http.StatusTooManyRequests, testutil.MustFixture(t, testutil.GeminiErrorQuota))
	relaySrv := httptest.NewServer(env.Handler())
	defer relaySrv.Close()

	_, _, err := executeCommand("prompt", "--relay", relaySrv.URL, "hi")
	if err == nil {
		t.Fatal("expected an error")
	}
	if !strings.Contains(err.Error(), "429") || !strings.Contains(err.Error(), "exhausted") {
		t.Errorf("error should carry status and message: %v", err)
	}
}

func TestPromptCommand_RequiresArgs(t *testing.T) {
	stdout, stderr, err := executeCommand("prompt")
	if err == nil {
		t.Error("prompt without text should fail")
	}
	if output := stdout + stderr; !strings.Contains(output, "Error:") {
		t.Errorf("expected an error message, got %q", output)
	}
}

func TestPromptCommand_InvalidTimeout(t *testing.T) {
	_, _, err := executeCommand("prompt", "--timeout", "0s", "hello")
	if err == nil {
		t.Fatal("prompt with a zero timeout should fail")
	}
	if !strings.Contains(err.Error(), "--timeout must be positive") {
		t.Errorf("error = %v", err)
	}
	if code := errors.GetExitCode(err); code != errors.ExitGeneralError {
		t.Errorf("exit code = %d, want %d", code, errors.ExitGeneralError)
	}
}

func TestHealthCommand(t *testing.T) {
	srv := httptest.NewServer(health.Handler())
	defer srv.Close()

	var out bytes.Buffer
	logging.Stdout = &out
	defer func() { logging.Stdout = os.Stdout }()

	if _, _, err := executeCommand("health", "--relay", srv.URL); err != nil {
		t.Fatalf("health failed: %v", err)
	}
	if !strings.Contains(out.String(), "healthy") {
		t.Errorf("output = %q", out.String())
	}
}

func TestHealthCommand_Down(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	if _, _, err := executeCommand("health", "--relay", srv.URL); err == nil {
		t.Error("health should fail for a relay that is not answering")
	}
}

func TestVersionCommand(t *testing.T) {
	stdout, _, err := executeCommand("version")
	if err != nil {
		t.Fatalf("version failed: %v", err)
	}
	if !strings.Contains(stdout, "prompt-relay "+Version) {
		t.Errorf("stdout = %q", stdout)
	}
}

func TestConfigCommand_ValidFile(t *testing.T) {
	dir := isolateEnv(t)
	path := testutil.WriteFixture(t, dir, testutil.ValidConfig)

	stdout, _, err := executeCommand("config", "--config", path)
	if err != nil {
		t.Fatalf("config failed: %v", err)
	}
	for _, want := range []string{"port = 8080", `model = "gemini-1.5-pro-latest"`, `upstream_timeout = "45s"`} {
		if !strings.Contains(stdout, want) {
			t.Errorf("output should contain %s:\n%s", want, stdout)
		}
	}
}
