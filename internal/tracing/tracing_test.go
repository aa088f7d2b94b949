package tracing

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"go.opentelemetry.io/otel"
)

func TestInitExportsSpans(t *testing.T) {
	prev := otel.GetTracerProvider()
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	var buf bytes.Buffer
	shutdown, err := Init(&buf, "test")
	if err != nil {
		t.Fatalf("init: %v", err)
	}

	_, span := Tracer("tracing_test").Start(context.Background(), "unit-span")
	span.End()

	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "unit-span") {
		t.Errorf("span not exported: %s", out)
	}
	if !strings.Contains(out, ServiceName) {
		t.Errorf("service name missing from resource: %s", out)
	}
}
