package config

import (
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/a1utilityhub/prompt-relay/internal/gemini"
	"github.com/a1utilityhub/prompt-relay/internal/port"
)

// Environment variables read by Load.
const (
	EnvAPIKey          = "GEMINI_API_KEY"
	EnvPort            = "PORT"
	EnvAllowedOrigin   = "ALLOWED_ORIGIN"
	EnvStaticDir       = "STATIC_DIR"
	EnvModel           = "GEMINI_MODEL"
	EnvUpstreamURL     = "GEMINI_BASE_URL"
	EnvUpstreamTimeout = "UPSTREAM_TIMEOUT"
	EnvAuditLog        = "AUDIT_LOG"
	EnvTelemetryDir    = "TELEMETRY_DIR"
	EnvLogFile         = "LOG_FILE"
)

const (
	// DefaultAllowedOrigin is the frontend permitted to call the relay.
	DefaultAllowedOrigin = "https://a1utilityhub.netlify.app"

	// DefaultEnvFile is read when present; a missing default file is not an error.
	DefaultEnvFile = ".env"

	redacted = "REDACTED"
)

// ErrMissingAPIKey is returned by Validate when no provider credential is configured.
var ErrMissingAPIKey = errors.New(EnvAPIKey + " is required")

// Config is the relay configuration. It is built once at startup and passed
// down explicitly; nothing else reads the process environment.
type Config struct {
	APIKey          string        `toml:"api_key"`
	Port            int           `toml:"port"`
	AllowedOrigin   string        `toml:"allowed_origin"`
	StaticDir       string        `toml:"static_dir"`
	Model           string        `toml:"model"`
	UpstreamURL     string        `toml:"upstream_url"`
	UpstreamTimeout time.Duration `toml:"upstream_timeout"`
	AuditLog        string        `toml:"audit_log"`
	TelemetryDir    string        `toml:"telemetry_dir"`
	LogFile         string        `toml:"log_file"`
}

// Default returns the configuration used when no source sets a value.
func Default() *Config {
	return &Config{
		Port:          port.Default,
		AllowedOrigin: DefaultAllowedOrigin,
		Model:         gemini.DefaultModel,
		UpstreamURL:   gemini.DefaultBaseURL,
	}
}

// LoadOptions selects the configuration sources.
type LoadOptions struct {
	// ConfigFile is an optional TOML file. Empty means none.
	ConfigFile string

	// EnvFile is a dotenv file. Empty means DefaultEnvFile, which may be absent.
	EnvFile string

	// LookupEnv reads the process environment. Defaults to os.LookupEnv.
	LookupEnv func(string) (string, bool)
}

// Load merges defaults, the TOML file, the dotenv file and the environment,
// in increasing order of precedence. Flags are applied by the caller, after
// which Validate must be called.
func Load(opts LoadOptions) (*Config, error) {
	cfg := Default()

	if opts.ConfigFile != "" {
		if err := cfg.loadFile(opts.ConfigFile); err != nil {
			return nil, err
		}
	}

	dotenv, err := readEnvFile(opts.EnvFile)
	if err != nil {
		return nil, err
	}

	lookupEnv := opts.LookupEnv
	if lookupEnv == nil {
		lookupEnv = os.LookupEnv
	}
	lookup := func(key string) (string, bool) {
		if v, ok := lookupEnv(key); ok && v != "" {
			return v, true
		}
		v, ok := dotenv[key]
		return v, ok
	}

	if err := cfg.applyEnv(lookup); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	md, err := toml.DecodeFile(path, c)
	if err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return fmt.Errorf("unknown keys in config file %s: %s", path, strings.Join(keys, ", "))
	}
	return nil
}

func readEnvFile(path string) (map[string]string, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultEnvFile
	}

	values, err := godotenv.Read(path)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read env file %s: %w", path, err)
	}
	return values, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	setString := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}

	setString(EnvAPIKey, &c.APIKey)
	setString(EnvAllowedOrigin, &c.AllowedOrigin)
	setString(EnvStaticDir, &c.StaticDir)
	setString(EnvModel, &c.Model)
	setString(EnvUpstreamURL, &c.UpstreamURL)
	setString(EnvAuditLog, &c.AuditLog)
	setString(EnvTelemetryDir, &c.TelemetryDir)
	setString(EnvLogFile, &c.LogFile)

	if v, ok := lookup(EnvPort); ok && strings.TrimSpace(v) != "" {
		p, err := port.Parse(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvPort, err)
		}
		c.Port = p
	}

	if v, ok := lookup(EnvUpstreamTimeout); ok && v != "" {
		d, err := parseTimeout(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvUpstreamTimeout, err)
		}
		c.UpstreamTimeout = d
	}

	return nil
}

// parseTimeout accepts a Go duration ("30s") or a bare number of seconds.
func parseTimeout(v string) (time.Duration, error) {
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q", v)
	}
	return d, nil
}

// Validate checks that the Config is usable by the relay.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.APIKey) == "" {
		return ErrMissingAPIKey
	}

	if err := port.Validate(c.Port); err != nil {
		return err
	}

	origin, err := url.Parse(c.AllowedOrigin)
	if err != nil || origin.Scheme == "" || origin.Host == "" {
		return fmt.Errorf("allowed origin must be an absolute URL (got %q)", c.AllowedOrigin)
	}
	if origin.Path != "" && origin.Path != "/" {
		return fmt.Errorf("allowed origin must not contain a path (got %q)", c.AllowedOrigin)
	}

	if c.Model == "" {
		return fmt.Errorf("model is required")
	}

	upstream, err := url.Parse(c.UpstreamURL)
	if err != nil || upstream.Host == "" {
		return fmt.Errorf("upstream URL must be an absolute URL (got %q)", c.UpstreamURL)
	}

	if c.UpstreamTimeout < 0 {
		return fmt.Errorf("upstream timeout must not be negative (got %s)", c.UpstreamTimeout)
	}

	if c.StaticDir != "" {
		info, err := os.Stat(c.StaticDir)
		if err != nil {
			return fmt.Errorf("static directory: %w", err)
		}
		if !info.IsDir() {
			return fmt.Errorf("static directory %s is not a directory", c.StaticDir)
		}
	}

	return nil
}

// Origin returns the allowed origin in canonical form (no trailing slash).
func (c *Config) Origin() string {
	return strings.TrimRight(c.AllowedOrigin, "/")
}

// ServeStatic reports whether the relay also hosts the frontend.
func (c *Config) ServeStatic() bool {
	return c.StaticDir != ""
}

// Redacted returns a copy safe to print.
func (c *Config) Redacted() *Config {
	out := *c
	if out.APIKey != "" {
		out.APIKey = redacted
	}
	return &out
}

// WriteTOML encodes the redacted configuration.
func (c *Config) WriteTOML(w io.Writer) error {
	r := c.Redacted()
	// Durations are written in their string form so the output loads back.
	view := struct {
		APIKey          string `toml:"api_key"`
		Port            int    `toml:"port"`
		AllowedOrigin   string `toml:"allowed_origin"`
		StaticDir       string `toml:"static_dir"`
		Model           string `toml:"model"`
		UpstreamURL     string `toml:"upstream_url"`
		UpstreamTimeout string `toml:"upstream_timeout"`
		AuditLog        string `toml:"audit_log"`
		TelemetryDir    string `toml:"telemetry_dir"`
		LogFile         string `toml:"log_file"`
	}{
		APIKey:          r.APIKey,
		Port:            r.Port,
		AllowedOrigin:   r.AllowedOrigin,
		StaticDir:       r.StaticDir,
		Model:           r.Model,
		UpstreamURL:     r.UpstreamURL,
		UpstreamTimeout: r.UpstreamTimeout.String(),
		AuditLog:        r.AuditLog,
		TelemetryDir:    r.TelemetryDir,
		LogFile:         r.LogFile,
	}
	return toml.NewEncoder(w).Encode(view)
}
