package copilot

import (
	"context"
	"testing"

	"go.opentelemetry.io/otel"
)

func TestSetupTracingDisabled(t *testing.T) {
	shutdown, err := SetupTracing(context.Background(), TracingConfig{}, testLogger())
	if err != nil {
		t.Fatalf("SetupTracing: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Errorf("shutdown: %v", err)
	}
}

func TestSetupTracingInProcess(t *testing.T) {
	shutdown, err := SetupTracing(context.Background(), TracingConfig{Enabled: true}, testLogger())
	if err != nil {
		t.Fatalf("SetupTracing: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Errorf("shutdown: %v", err)
	}
}

func TestDefaultConfigRecordsSpans(t *testing.T) {
	previous := otel.GetTracerProvider()
	t.Cleanup(func() { otel.SetTracerProvider(previous) })

	cfg := DefaultConfig()
	if !cfg.Tracing.Enabled {
		t.Fatal("tracing should be enabled by default")
	}

	shutdown, err := SetupTracing(context.Background(), cfg.Tracing, testLogger())
	if err != nil {
		t.Fatalf("SetupTracing: %v", err)
	}
	defer shutdown(context.Background())

	_, span := otel.Tracer("test").Start(context.Background(), TraceName)
	defer span.End()
	if !span.IsRecording() {
		t.Error("span from the default config is not recording")
	}
}
