// Package config provides the relay configuration and its loading.
//
// # Sources
//
// Load merges, from lowest to highest precedence:
//
//   - Default(): port 3000, the production frontend origin, the public
//     Gemini endpoint and model
//   - an optional TOML file (--config)
//   - a dotenv file (.env by default; values never override the real environment)
//   - the process environment (GEMINI_API_KEY, PORT, ALLOWED_ORIGIN, ...)
//
// Command-line flags are applied by the cmd package on top of the result,
// then Validate runs. A missing API key is reported as ErrMissingAPIKey so
// the CLI can fail fast with a configuration exit code.
//
// # File Format
//
//	api_key = "..."
//	port = 8080
//	allowed_origin = "https://example.netlify.app"
//	static_dir = "./dist"
//	upstream_timeout = "60s"
//
// Unknown keys are rejected.
package config
