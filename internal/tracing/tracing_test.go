package tracing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitTracer_RequiresServiceName(t *testing.T) {
	_, err := InitTracer(context.Background(), Config{})
	assert.Error(t, err)
}

func TestInitTracer_RejectsUnknownExporter(t *testing.T) {
	_, err := InitTracer(context.Background(), Config{ServiceName: "klondike-test", Exporter: "kafka"})
	assert.ErrorContains(t, err, "unsupported exporter")
}

func TestInitTracer_NoopExporter(t *testing.T) {
	shutdown, err := InitTracer(context.Background(), Config{ServiceName: "klondike-test", Exporter: "none"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = shutdown(context.Background()) })

	ctx, span := StartSpan(context.Background(), "test.span")
	defer span.End()
	assert.NotNil(t, ctx)
	assert.True(t, span.SpanContext().IsValid())
}

func TestParseSamplerFromEnv(t *testing.T) {
	t.Setenv("OTEL_TRACES_SAMPLER", "always_off")
	s := parseSamplerFromEnv("production", nil)
	assert.Contains(t, s.Description(), "AlwaysOff")
}
