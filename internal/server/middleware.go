package server

import (
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/a1utilityhub/prompt-relay/internal/relay"
	"github.com/a1utilityhub/prompt-relay/internal/requestid"
)

// MsgOriginNotAllowed is returned for cross-origin API calls from other sites.
const MsgOriginNotAllowed = "Origin not allowed"

// originGuard rejects API requests from origins other than the allowed one
// and the server itself. Requests without an Origin header pass.
func originGuard(c *cors.Cors, logger *slog.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin == "" || sameOrigin(origin, r) || c.OriginAllowed(r) {
				next.ServeHTTP(w, r)
				return
			}
			logger.Debug("rejected cross-origin request",
				"origin", origin, "path", r.URL.Path, "request_id", requestid.FromContext(r.Context()))
			relay.WriteJSONError(w, http.StatusForbidden, MsgOriginNotAllowed)
		})
	}
}

func sameOrigin(origin string, r *http.Request) bool {
	u, err := url.Parse(origin)
	if err != nil || u.Host == "" {
		return false
	}
	return u.Host == r.Host
}

// loggingResponseWriter wraps http.ResponseWriter to capture status code and size
type loggingResponseWriter struct {
	http.ResponseWriter
	statusCode int
	bytes      int
}

func (lw *loggingResponseWriter) WriteHeader(code int) {
	lw.statusCode = code
	lw.ResponseWriter.WriteHeader(code)
}

func (lw *loggingResponseWriter) Write(b []byte) (int, error) {
	n, err := lw.ResponseWriter.Write(b)
	lw.bytes += n
	return n, err
}

func (lw *loggingResponseWriter) Unwrap() http.ResponseWriter {
	return lw.ResponseWriter
}

func accessLog(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		lw := &loggingResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(lw, r)

		logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", lw.statusCode,
			"bytes", lw.bytes,
			"duration", time.Since(start),
			"request_id", requestid.FromContext(r.Context()),
		)
	})
}
