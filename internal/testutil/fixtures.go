package testutil

import (
	"embed"
	"os"
	"path/filepath"
	"testing"
)

//go:embed fixtures/*.json fixtures/*.toml
var fixturesFS embed.FS

// Fixture names
const (
	GeminiSuccess        = "gemini_success.json"
	GeminiErrorQuota     = "gemini_error_quota.json"
	GeminiErrorNoMessage = "gemini_error_no_message.json"
	ValidConfig          = "valid_config.toml"
	InvalidConfig        = "invalid_config.toml"
)

// LoadFixture loads a fixture file by name.
func LoadFixture(name string) ([]byte, error) {
	return fixturesFS.ReadFile("fixtures/" + name)
}

// MustFixture loads a fixture or fails the test.
func MustFixture(t testing.TB, name string) []byte {
	t.Helper()
	data, err := LoadFixture(name)
	if err != nil {
		t.Fatalf("failed to load fixture %s: %v", name, err)
	}
	return data
}

// WriteFixture copies a fixture into dir and returns its path.
func WriteFixture(t testing.TB, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, MustFixture(t, name), 0644); err != nil {
		t.Fatalf("failed to write fixture %s: %v", name, err)
	}
	return path
}
