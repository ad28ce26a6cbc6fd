package relay

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/a1utilityhub/prompt-relay/internal/audit"
)

type instruments struct {
	requests metric.Int64Counter
	upstream metric.Float64Histogram
}

func newInstruments(meter metric.Meter) (*instruments, error) {
	requests, err := meter.Int64Counter("relay.requests",
		metric.WithDescription("Relayed prompt requests by outcome"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	upstream, err := meter.Float64Histogram("relay.upstream.duration",
		metric.WithDescription("Latency of generateContent calls"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	return &instruments{requests: requests, upstream: upstream}, nil
}

func (m *instruments) recordRequest(ctx context.Context, outcome audit.Outcome) {
	// The request context may already be canceled; metrics still count it.
	m.requests.Add(context.WithoutCancel(ctx), 1,
		metric.WithAttributes(attribute.String("relay.outcome", string(outcome))))
}

func (m *instruments) recordUpstream(ctx context.Context, status int, d time.Duration) {
	m.upstream.Record(context.WithoutCancel(ctx), d.Seconds(),
		metric.WithAttributes(attribute.Int("http.response.status_code", status)))
}
