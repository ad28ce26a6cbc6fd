package telemetry

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestNoop(t *testing.T) {
	tel := Noop()
	if tel.Tracer == nil || tel.Meter == nil {
		t.Fatal("Noop() returned nil instruments")
	}

	_, span := tel.Tracer.Start(context.Background(), "noop")
	span.End()

	if err := tel.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown() error: %v", err)
	}
}

func TestInit_EmptyDirIsNoop(t *testing.T) {
	tel, err := Init(context.Background(), Options{})
	if err != nil {
		t.Fatalf("Init() error: %v", err)
	}
	if len(tel.shutdown) != 0 {
		t.Error("Init() without a directory should not register exporters")
	}
}

func TestInit_WritesTraces(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "telemetry")
	ctx := context.Background()

	tel, err := Init(ctx, Options{Dir: dir, Version: "test", MetricInterval: time.Hour})
	if err != nil {
		t.Fatalf("Init() error: %v", err)
	}

	_, span := tel.Tracer.Start(ctx, "relay.test-span")
	span.End()

	counter, err := tel.Meter.Int64Counter("relay.test.counter")
	if err != nil {
		t.Fatalf("Int64Counter() error: %v", err)
	}
	counter.Add(ctx, 1)

	if err := tel.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown() error: %v", err)
	}

	traces, err := os.ReadFile(filepath.Join(dir, tracesFile))
	if err != nil {
		t.Fatalf("trace file missing: %v", err)
	}
	if !strings.Contains(string(traces), "relay.test-span") {
		t.Errorf("trace file does not contain the span:\n%s", traces)
	}

	metrics, err := os.ReadFile(filepath.Join(dir, metricsFile))
	if err != nil {
		t.Fatalf("metrics file missing: %v", err)
	}
	if !strings.Contains(string(metrics), "relay.test.counter") {
		t.Errorf("metrics file does not contain the counter:\n%s", metrics)
	}
}
