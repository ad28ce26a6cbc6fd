package server

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/a1utilityhub/prompt-relay/internal/errors"
	"github.com/a1utilityhub/prompt-relay/internal/health"
	"github.com/a1utilityhub/prompt-relay/internal/relay"
	"github.com/a1utilityhub/prompt-relay/internal/requestid"
)

// DrainTimeout bounds graceful shutdown.
const DrainTimeout = 10 * time.Second

// Options configures the HTTP server
type Options struct {
	// Addr to listen on (e.g., ":3000")
	Addr string

	// AllowedOrigin is the one cross-origin caller permitted to use the API
	AllowedOrigin string

	// Relay handles POST /api/prompt
	Relay http.Handler

	// Static serves the frontend; nil disables static hosting
	Static http.Handler

	// Logger for server operations
	Logger *slog.Logger
}

// Server wraps the relay routes with lifecycle management
type Server struct {
	server  *http.Server
	handler http.Handler
	logger  *slog.Logger
}

// New builds the router and the http.Server around it.
func New(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{opts.AllowedOrigin},
		AllowCredentials: true,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type"},
		ExposedHeaders:   []string{requestid.Header},
	})

	router := mux.NewRouter()
	router.Handle(health.Path, health.Handler()).Methods(http.MethodGet, http.MethodHead)

	api := router.PathPrefix("/api").Subrouter()
	api.Use(originGuard(c, opts.Logger))
	api.Handle(strings.TrimPrefix(relay.Path, "/api"), opts.Relay).Methods(http.MethodPost)

	if opts.Static != nil {
		// One matcher so a method mismatch on an API route still yields 405.
		router.MatcherFunc(staticRoute).Handler(opts.Static)
	}

	// CORS wraps the router rather than using router.Use: mux middleware only
	// runs on matched routes and preflight OPTIONS requests match none.
	handler := requestid.Middleware(accessLog(opts.Logger, c.Handler(router)))

	return &Server{
		server: &http.Server{
			Addr:         opts.Addr,
			Handler:      handler,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 120 * time.Second, // Generation can be slow
			IdleTimeout:  60 * time.Second,
		},
		handler: handler,
		logger:  opts.Logger,
	}
}

// Handler returns the fully wrapped handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start listens on the configured address and serves until Shutdown.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		return errors.ServerError("listen", err)
	}
	return s.Serve(ln)
}

// Serve accepts connections on ln until Shutdown.
func (s *Server) Serve(ln net.Listener) error {
	s.logger.Info("starting relay server", "addr", ln.Addr().String())
	if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.ServerError("serve", err)
	}
	return nil
}

// Shutdown stops accepting connections and waits for in-flight requests,
// up to DrainTimeout or ctx's deadline, whichever is sooner.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, DrainTimeout)
	defer cancel()

	if err := s.server.Shutdown(ctx); err != nil {
		return errors.ServerError("shutdown", err)
	}
	return nil
}

func staticRoute(r *http.Request, m *mux.RouteMatch) bool {
	return notAPI(r, m) && (r.Method == http.MethodGet || r.Method == http.MethodHead)
}

func notAPI(r *http.Request, _ *mux.RouteMatch) bool {
	return r.URL.Path != "/api" && !strings.HasPrefix(r.URL.Path, "/api/")
}
