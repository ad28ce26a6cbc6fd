// Package app provides the application context for prompt-relay.
// It allows dependency injection for testing.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/a1utilityhub/prompt-relay/internal/audit"
	"github.com/a1utilityhub/prompt-relay/internal/config"
	"github.com/a1utilityhub/prompt-relay/internal/logging"
	"github.com/a1utilityhub/prompt-relay/internal/port"
	"github.com/a1utilityhub/prompt-relay/internal/relay"
	"github.com/a1utilityhub/prompt-relay/internal/server"
	"github.com/a1utilityhub/prompt-relay/internal/static"
	"github.com/a1utilityhub/prompt-relay/internal/telemetry"
)

// App holds the application dependencies
type App struct {
	// Config is the merged, validated configuration
	Config *config.Config

	// Logger for server operations
	Logger *slog.Logger

	// Audit receives one entry per relayed request (nil = disabled)
	Audit *audit.Logger

	// Telemetry supplies tracing and metrics
	Telemetry *telemetry.Telemetry

	// Transport overrides the upstream HTTP transport
	Transport http.RoundTripper

	// Version is reported in telemetry
	Version string

	closers []func(context.Context) error
}

// Option is a function that configures the App
type Option func(*App)

// WithLogger sets a custom logger
func WithLogger(l *slog.Logger) Option {
	return func(a *App) {
		a.Logger = l
	}
}

// WithAudit sets a custom audit logger
func WithAudit(l *audit.Logger) Option {
	return func(a *App) {
		a.Audit = l
	}
}

// WithTelemetry sets custom telemetry
func WithTelemetry(t *telemetry.Telemetry) Option {
	return func(a *App) {
		a.Telemetry = t
	}
}

// WithTransport sets the upstream transport
func WithTransport(rt http.RoundTripper) Option {
	return func(a *App) {
		a.Transport = rt
	}
}

// WithVersion sets the reported version
func WithVersion(v string) Option {
	return func(a *App) {
		a.Version = v
	}
}

// New creates a new App for cfg with the given options.
// The audit log and telemetry are opened from cfg unless provided.
func New(ctx context.Context, cfg *config.Config, opts ...Option) (*App, error) {
	app := &App{Config: cfg}

	for _, opt := range opts {
		opt(app)
	}

	if app.Logger == nil {
		app.Logger = logging.Logger
	}

	if app.Audit == nil && cfg.AuditLog != "" {
		al, err := audit.NewLogger(cfg.AuditLog)
		if err != nil {
			return nil, err
		}
		app.Audit = al
		app.closers = append(app.closers, func(context.Context) error { return al.Close() })
	}

	if app.Telemetry == nil {
		tel, err := telemetry.Init(ctx, telemetry.Options{Dir: cfg.TelemetryDir, Version: app.Version})
		if err != nil {
			_ = app.Close(ctx)
			return nil, fmt.Errorf("failed to initialize telemetry: %w", err)
		}
		app.Telemetry = tel
		app.closers = append(app.closers, tel.Shutdown)
	}

	return app, nil
}

// Relay builds the relay handler
func (a *App) Relay() (*relay.Relay, error) {
	return relay.New(&relay.Config{
		APIKey:      a.Config.APIKey,
		UpstreamURL: a.Config.UpstreamURL,
		Model:       a.Config.Model,
		Timeout:     a.Config.UpstreamTimeout,
		Logger:      a.Logger,
		Audit:       a.Audit,
		Telemetry:   a.Telemetry,
		Transport:   a.Transport,
	})
}

// Server builds the HTTP server with every route the configuration enables
func (a *App) Server() (*server.Server, error) {
	rl, err := a.Relay()
	if err != nil {
		return nil, err
	}

	opts := server.Options{
		Addr:          port.ListenAddr(a.Config.Port),
		AllowedOrigin: a.Config.Origin(),
		Relay:         rl,
		Logger:        a.Logger,
	}

	if a.Config.ServeStatic() {
		h, err := static.New(a.Config.StaticDir)
		if err != nil {
			return nil, err
		}
		a.Logger.Info("serving static files", "root", h.Root())
		opts.Static = h
	}

	return server.New(opts), nil
}

// Close releases resources opened by New, in reverse order
func (a *App) Close(ctx context.Context) error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
