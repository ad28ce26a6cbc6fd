package cmd

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/a1utilityhub/prompt-relay/internal/app"
	"github.com/a1utilityhub/prompt-relay/internal/errors"
	"github.com/a1utilityhub/prompt-relay/internal/logging"
	"github.com/a1utilityhub/prompt-relay/internal/port"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the relay server",
	Long: `Run the HTTP relay.

Configuration is merged from, in increasing precedence: built-in defaults,
the TOML file given with --config, a dotenv file, the environment and flags.
The server refuses to start without GEMINI_API_KEY.

Routes:
  GET  /health       liveness check
  POST /api/prompt   relay a prompt to Gemini
  GET  /*            the frontend, when --static-dir is set

SIGINT/SIGTERM drain in-flight requests and stop the server.
SIGHUP reopens the audit log, for use with external log rotation.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	addConfigFlags(serveCmd)
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := validateConfig(cfg); err != nil {
		return err
	}

	if cfg.LogFile != "" {
		logFile := logging.RotatingFile(cfg.LogFile)
		defer logFile.Close()
		logging.Setup(verbose, jsonOutput, io.MultiWriter(os.Stderr, logFile))
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, app.WithVersion(Version))
	if err != nil {
		return errors.ConfigError("failed to initialize relay", err)
	}
	defer func() {
		if err := a.Close(context.Background()); err != nil {
			logging.Warn("failed to close resources", "error", err)
		}
	}()

	server, err := a.Server()
	if err != nil {
		return errors.ConfigError("failed to build server", err)
	}

	// Handle SIGHUP for audit log reopen
	hupCh := make(chan os.Signal, 1)
	signal.Notify(hupCh, syscall.SIGHUP)
	defer signal.Stop(hupCh)
	go func() {
		for range hupCh {
			logging.Info("reopening audit log")
			if err := a.Audit.Rotate(); err != nil {
				logging.Warn("failed to reopen audit log", "error", err)
			}
		}
	}()

	logInfo("Starting prompt relay on %s", port.LocalURL(cfg.Port))
	logInfo("Allowed origin: %s", cfg.Origin())
	logInfo("Model: %s", cfg.Model)
	if cfg.ServeStatic() {
		logInfo("Static files: %s", cfg.StaticDir)
	}
	if cfg.AuditLog != "" {
		logInfo("Audit log: %s", cfg.AuditLog)
	}
	if cfg.TelemetryDir != "" {
		logInfo("Telemetry: %s", cfg.TelemetryDir)
	}

	errCh := make(chan error, 1)
	go func() { errCh <- server.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		logging.Info("shutting down relay server")
		if err := server.Shutdown(context.Background()); err != nil {
			return err
		}
		logSuccess("Relay stopped")
		return nil
	}
}
