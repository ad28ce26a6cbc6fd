// Package integration runs prompt-relay end to end over real sockets.
//
// Workflow tests start the full server on a loopback port against a fake
// upstream and drive it through the client package, the way the CLI and the
// browser do.
//
// Live tests call the real Gemini API and are skipped unless
// PROMPT_RELAY_INTEGRATION_TESTS is set and GEMINI_API_KEY is configured
// (environment or .env).
//
//	PROMPT_RELAY_INTEGRATION_TESTS=1 GEMINI_API_KEY=... go test ./internal/integration/
package integration
