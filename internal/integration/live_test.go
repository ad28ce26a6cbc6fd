package integration

import (
	"context"
	"strings"
	"testing"

	"github.com/a1utilityhub/prompt-relay/internal/gemini"
)

func TestLive_Prompt(t *testing.T) {
	h := NewLiveHarness(t)

	body, err := h.Client().Prompt(context.Background(), "Reply with the single word: pong", nil)
	if err != nil {
		t.Fatalf("Prompt() error: %v", err)
	}

	resp, err := gemini.ParseResponse(body)
	if err != nil {
		t.Fatalf("ParseResponse() error: %v", err)
	}
	if !strings.Contains(strings.ToLower(resp.Text()), "pong") {
		t.Errorf("unexpected answer %q", resp.Text())
	}
}
