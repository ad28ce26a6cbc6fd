// Package health provides the relay's liveness endpoint and a client check.
//
// GET /health answers {"ok": true} with status 200. The handler has no
// dependencies, so load balancers keep routing to the relay while the
// upstream provider is down; provider failures surface on /api/prompt.
//
// Check is used by the prompt command to confirm a relay is reachable.
package health
