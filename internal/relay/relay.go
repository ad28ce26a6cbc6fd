package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/a1utilityhub/prompt-relay/internal/audit"
	"github.com/a1utilityhub/prompt-relay/internal/gemini"
	"github.com/a1utilityhub/prompt-relay/internal/requestid"
	"github.com/a1utilityhub/prompt-relay/internal/telemetry"
)

// Path is where the relay endpoint is mounted.
const Path = "/api/prompt"

// Config holds relay configuration
type Config struct {
	// APIKey is the provider credential. It is sent upstream only.
	APIKey string

	// UpstreamURL is the provider base URL (e.g., "https://generativelanguage.googleapis.com")
	UpstreamURL string

	// Model is the provider model name
	Model string

	// Timeout bounds the upstream call (0 = no timeout, the HTTP client default)
	Timeout time.Duration

	// Logger for relay operations
	Logger *slog.Logger

	// Audit receives one entry per request (nil = no auditing)
	Audit *audit.Logger

	// Telemetry supplies the tracer and meter (nil = no-op)
	Telemetry *telemetry.Telemetry

	// Transport is an optional HTTP transport for upstream calls.
	// Used in tests to supply a TLS-aware transport for test servers.
	Transport http.RoundTripper
}

// Relay forwards prompts to the provider with the server-held key
type Relay struct {
	config   *Config
	endpoint string
	client   *http.Client
	tracer   trace.Tracer
	metrics  *instruments
}

// inboundRequest is the browser's request body. Prompt is a pointer so an
// absent field can be told apart from an empty string.
type inboundRequest struct {
	Prompt     *string         `json:"prompt"`
	InlineData json.RawMessage `json:"inlineData"`
}

// New creates a new relay instance
func New(cfg *Config) (*Relay, error) {
	c := *cfg
	cfg = &c

	target, err := url.Parse(cfg.UpstreamURL)
	if err != nil {
		return nil, fmt.Errorf("invalid upstream URL: %w", err)
	}

	// The key travels in the query string, so plaintext HTTP would expose it.
	if target.Scheme != "https" {
		return nil, fmt.Errorf("upstream must use HTTPS (got %q) to protect the API key in transit", target.Scheme)
	}

	// Skip this check when a custom Transport is provided (used in tests
	// with httptest.NewTLSServer which binds to 127.0.0.1).
	if cfg.Transport == nil && isInternalHost(target.Hostname()) {
		return nil, fmt.Errorf("upstream must not point to internal/link-local addresses: %s", target.Hostname())
	}

	if cfg.APIKey == "" {
		return nil, fmt.Errorf("API key is required")
	}
	if cfg.Model == "" {
		cfg.Model = gemini.DefaultModel
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Telemetry == nil {
		cfg.Telemetry = telemetry.Noop()
	}

	endpoint, err := gemini.Endpoint(cfg.UpstreamURL, cfg.Model, cfg.APIKey)
	if err != nil {
		return nil, fmt.Errorf("invalid upstream endpoint: %w", err)
	}

	metrics, err := newInstruments(cfg.Telemetry.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics: %w", err)
	}

	client := &http.Client{Timeout: cfg.Timeout}
	if cfg.Transport != nil {
		client.Transport = cfg.Transport
	}

	return &Relay{
		config:   cfg,
		endpoint: endpoint,
		client:   client,
		tracer:   cfg.Telemetry.Tracer,
		metrics:  metrics,
	}, nil
}

// ServeHTTP implements http.Handler
func (rl *Relay) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	startTime := time.Now()
	ctx := r.Context()
	reqID := requestid.FromContext(ctx)
	logger := rl.config.Logger.With("request_id", reqID)

	entry := audit.Entry{
		Timestamp:   startTime,
		RequestID:   reqID,
		Method:      r.Method,
		Path:        r.URL.Path,
		RequestSize: r.ContentLength,
		RemoteAddr:  r.RemoteAddr,
		Origin:      r.Header.Get("Origin"),
	}
	defer func() {
		entry.Duration = time.Since(startTime)
		rl.config.Audit.Log(entry)
		rl.metrics.recordRequest(ctx, entry.Outcome)
	}()

	// A panic must not take the process down or leak details to the caller.
	defer func() {
		if rec := recover(); rec != nil {
			logger.Error("relay panic", "panic", rec)
			entry.Outcome = audit.OutcomeInternal
			entry.StatusCode = writeError(w, errInternal(fmt.Errorf("panic: %v", rec)))
		}
	}()

	var in inboundRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.Prompt == nil {
		logger.Debug("rejected request body", "error", err)
		entry.Outcome = audit.OutcomeRejected
		entry.StatusCode = writeError(w, errBadRequest)
		return
	}
	entry.HasAttachment = gemini.HasValue(in.InlineData)

	body, err := rl.generate(ctx, gemini.NewRequest(*in.Prompt, in.InlineData), entry.HasAttachment)

	var upstreamErr *UpstreamError
	switch {
	case err == nil:
		entry.Outcome = audit.OutcomeSuccess
		entry.UpstreamStatus = http.StatusOK
		entry.StatusCode = http.StatusOK
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write(body); err != nil {
			logger.Debug("failed to write response", "error", err)
		}

	case errors.As(err, &upstreamErr):
		logger.Warn("upstream error", "status", upstreamErr.Status, "message", upstreamErr.Message)
		entry.Outcome = audit.OutcomeUpstream
		entry.UpstreamStatus = upstreamErr.Status
		entry.StatusCode = writeError(w, err)

	case ctx.Err() != nil && errors.Is(err, context.Canceled):
		// The caller went away; nobody is left to answer.
		logger.Debug("client canceled request", "error", err)
		entry.Outcome = audit.OutcomeCanceled

	default:
		logger.Error("relay failure", "error", err)
		entry.Outcome = audit.OutcomeInternal
		entry.StatusCode = writeError(w, err)
	}
}

// generate performs the single upstream call. On success it returns the
// provider's JSON body unchanged; non-2xx statuses become *UpstreamError and
// everything else an internal error.
func (rl *Relay) generate(ctx context.Context, payload *gemini.Request, hasAttachment bool) ([]byte, error) {
	ctx, span := rl.tracer.Start(ctx, "gemini.generateContent",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("gemini.model", rl.config.Model),
			attribute.Bool("relay.has_attachment", hasAttachment),
		),
	)
	defer span.End()

	start := time.Now()
	body, status, err := rl.roundTrip(ctx, payload)
	rl.metrics.recordUpstream(ctx, status, time.Since(start))

	if status != 0 {
		span.SetAttributes(attribute.Int("http.response.status_code", status))
	}
	if err != nil {
		span.SetStatus(codes.Error, "upstream call failed")
		span.RecordError(err)
	}
	return body, err
}

func (rl *Relay) roundTrip(ctx context.Context, payload *gemini.Request) ([]byte, int, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, 0, errInternal(fmt.Errorf("failed to encode payload: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rl.endpoint, bytes.NewReader(data))
	if err != nil {
		return nil, 0, errInternal(redactError(err))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := rl.client.Do(req)
	if err != nil {
		return nil, 0, errInternal(redactError(err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, errInternal(fmt.Errorf("failed to read upstream body: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, resp.StatusCode, &UpstreamError{
			Status:  resp.StatusCode,
			Message: gemini.ErrorMessage(body),
		}
	}

	if !json.Valid(body) {
		return nil, resp.StatusCode, errInternal(fmt.Errorf("malformed upstream response (%d bytes)", len(body)))
	}

	return body, resp.StatusCode, nil
}

// redactError strips the credential from URLs embedded in transport errors.
func redactError(err error) error {
	var ue *url.Error
	if errors.As(err, &ue) {
		return &url.Error{Op: ue.Op, URL: gemini.RedactURL(ue.URL), Err: ue.Err}
	}
	return err
}

// isInternalHost returns true if the host resolves to a loopback or
// link-local address that could be used for SSRF attacks.
func isInternalHost(host string) bool {
	ip := net.ParseIP(host)
	if ip == nil {
		ips, err := net.LookupIP(host)
		if err != nil || len(ips) == 0 {
			return false
		}
		ip = ips[0]
	}
	return ip.IsLoopback() || ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast()
}
