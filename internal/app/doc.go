// Package app wires prompt-relay's components from a config.Config.
//
// This package manages application-wide dependencies using the functional
// options pattern, enabling easy testing through dependency injection.
//
// # Creating an App
//
//	// Production usage
//	a, err := app.New(ctx, cfg, app.WithVersion(version))
//
//	// Testing with custom dependencies
//	a, err := app.New(ctx, cfg,
//	    app.WithTransport(upstream.Client().Transport),
//	    app.WithTelemetry(telemetry.Noop()),
//	)
//
// # Available Options
//
//	WithLogger(logger)       // Custom slog logger
//	WithAudit(logger)        // Custom audit logger
//	WithTelemetry(t)         // Custom tracer and meter
//	WithTransport(rt)        // Upstream HTTP transport
//	WithVersion(v)           // Version reported in telemetry
//
// Close releases whatever New opened (audit file, telemetry exporters).
package app
