package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/a1utilityhub/prompt-relay/internal/config"
	"github.com/a1utilityhub/prompt-relay/internal/errors"
)

// Configuration flags shared by serve and config. Flags only override
// lower-precedence sources when set explicitly.
var (
	configFile      string
	envFile         string
	flagPort        int
	flagOrigin      string
	flagStaticDir   string
	flagModel       string
	flagUpstreamURL string
	flagTimeout     time.Duration
	flagAuditLog    string
	flagTelemetry   string
	flagLogFile     string
)

func addConfigFlags(c *cobra.Command) {
	f := c.Flags()
	f.StringVar(&configFile, "config", "", "Path to a TOML config file")
	f.StringVar(&envFile, "env-file", "", "Path to a dotenv file (default \".env\" if present)")
	f.IntVar(&flagPort, "port", 0, "Port to listen on")
	f.StringVar(&flagOrigin, "origin", "", "Allowed cross-origin caller")
	f.StringVar(&flagStaticDir, "static-dir", "", "Serve the frontend from this directory")
	f.StringVar(&flagModel, "model", "", "Gemini model name")
	f.StringVar(&flagUpstreamURL, "upstream-url", "", "Gemini API base URL")
	f.DurationVar(&flagTimeout, "upstream-timeout", 0, "Upstream call timeout (0 = none)")
	f.StringVar(&flagAuditLog, "audit-log", "", "Path to the JSONL audit log")
	f.StringVar(&flagTelemetry, "telemetry-dir", "", "Directory for trace and metric files")
	f.StringVar(&flagLogFile, "log-file", "", "Also write logs to this rotating file")
}

// loadConfig merges every configuration source, flags last.
func loadConfig(c *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(config.LoadOptions{
		ConfigFile: configFile,
		EnvFile:    envFile,
	})
	if err != nil {
		return nil, errors.ConfigError("failed to load configuration", err)
	}

	f := c.Flags()
	if f.Changed("port") {
		cfg.Port = flagPort
	}
	if f.Changed("origin") {
		cfg.AllowedOrigin = flagOrigin
	}
	if f.Changed("static-dir") {
		cfg.StaticDir = flagStaticDir
	}
	if f.Changed("model") {
		cfg.Model = flagModel
	}
	if f.Changed("upstream-url") {
		cfg.UpstreamURL = flagUpstreamURL
	}
	if f.Changed("upstream-timeout") {
		cfg.UpstreamTimeout = flagTimeout
	}
	if f.Changed("audit-log") {
		cfg.AuditLog = flagAuditLog
	}
	if f.Changed("telemetry-dir") {
		cfg.TelemetryDir = flagTelemetry
	}
	if f.Changed("log-file") {
		cfg.LogFile = flagLogFile
	}

	return cfg, nil
}

// validateConfig maps validation failures onto config exit codes.
func validateConfig(cfg *config.Config) error {
	if err := cfg.Validate(); err != nil {
		if errors.Is(err, config.ErrMissingAPIKey) {
			return errors.MissingAPIKey(config.EnvAPIKey)
		}
		return errors.ConfigError("invalid configuration", err)
	}
	return nil
}
