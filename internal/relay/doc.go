// Package relay implements POST /api/prompt: the browser sends a prompt and
// optional inline data, and the relay calls Gemini generateContent with the
// API key held on the server.
//
// # Key Features
//
//   - API key stays on the server and is redacted from every log line
//   - Exactly one upstream call per request, bound to the request context
//   - Upstream errors keep their status; everything else is a generic 500
//   - Audit logging: one JSONL entry per request
//   - Tracing and metrics through the telemetry package
//
// # Configuration
//
//	rl, err := relay.New(&relay.Config{
//	    APIKey:      cfg.APIKey,
//	    UpstreamURL: gemini.DefaultBaseURL,
//	    Model:       gemini.DefaultModel,
//	    Timeout:     60 * time.Second,
//	})
//	if err != nil {
//	    return err
//	}
//	router.Handle(relay.Path, rl).Methods(http.MethodPost)
//
// # Error Mapping
//
// StatusAndMessage is the single place failures become responses:
//
//	*UpstreamError   -> upstream status, upstream message (or "Gemini error")
//	invalid body     -> 400 "Invalid request body"
//	anything else    -> 500 "Internal server error"
package relay
