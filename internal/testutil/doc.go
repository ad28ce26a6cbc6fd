// Package testutil provides test fixtures and utilities.
//
// # Fixtures
//
// Fixtures are embedded using go:embed:
//
//	fixtures/gemini_success.json          a generateContent reply
//	fixtures/gemini_error_quota.json      a 429 error body with a message
//	fixtures/gemini_error_no_message.json an error body without one
//	fixtures/valid_config.toml
//	fixtures/invalid_config.toml          contains an unknown key
//
// # Fake Upstream
//
// FakeGemini is an httptest TLS server that records every call:
//
//	up := testutil.NewFakeGemini(t)
//	up.Reply(http.StatusTooManyRequests, testutil.MustFixture(t, testutil.GeminiErrorQuota))
//
// # Test Environment
//
// NewTestEnv wires config, app and server to a FakeGemini:
//
//	env := testutil.NewTestEnv(t)
//	env.Handler().ServeHTTP(w, req)
//	reqs := env.Upstream.Requests()
package testutil
