// Package server assembles the HTTP surface of prompt-relay.
//
// # Routes
//
//	GET  /health       liveness, never contacts upstream
//	POST /api/prompt   the relay (origin-guarded)
//	GET  /*            static frontend, when enabled
//
// Every response carries an X-Request-ID. CORS allows exactly one origin with
// credentials; API calls from any other site are refused with 403 before the
// relay runs.
//
// # Lifecycle
//
//	srv := server.New(server.Options{Addr: ":3000", AllowedOrigin: origin, Relay: rl})
//	go srv.Start()
//	...
//	srv.Shutdown(ctx) // drains for at most DrainTimeout
package server
