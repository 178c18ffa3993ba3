package tracing

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestOpenTelemetry(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	require.NoError(t, InitOpenTelemetry(Config{
		ServiceName:    "phobos-test",
		ServiceVersion: "1.0.0",
		Processors:     []sdktrace.SpanProcessor{recorder},
	}))
	t.Cleanup(func() { _ = ShutdownOpenTelemetry(context.Background()) })

	t.Run("span carries trace id", func(t *testing.T) {
		ctx, span := StartSpan(context.Background(), "host.Test", attribute.String("plugin.package", "com.test.a"))
		EndSpan(span, nil)

		assert.Equal(t, span.SpanContext().TraceID().String(), GetTraceID(ctx))
	})

	t.Run("existing trace id kept", func(t *testing.T) {
		ctx := WithTraceID(context.Background(), "fixed")
		ctx, span := StartSpan(ctx, "host.Test")
		EndSpan(span, nil)

		assert.Equal(t, "fixed", GetTraceID(ctx))
	})

	t.Run("error status", func(t *testing.T) {
		_, span := StartSpan(context.Background(), "host.Fail")
		EndSpan(span, errors.New("boom"))

		ended := recorder.Ended()
		require.NotEmpty(t, ended)
		last := ended[len(ended)-1]
		assert.Equal(t, "host.Fail", last.Name())
		assert.Equal(t, codes.Error, last.Status().Code)
		assert.Equal(t, "boom", last.Status().Description)
	})

	t.Run("resource names the service", func(t *testing.T) {
		ended := recorder.Ended()
		require.NotEmpty(t, ended)

		found := false
		for _, kv := range ended[0].Resource().Attributes() {
			if string(kv.Key) == "service.name" {
				found = kv.Value.AsString() == "phobos-test"
			}
		}
		assert.True(t, found)
	})
}

func TestInitReplacesProvider(t *testing.T) {
	first := tracetest.NewSpanRecorder()
	second := tracetest.NewSpanRecorder()

	require.NoError(t, InitOpenTelemetry(Config{ServiceName: "a", Processors: []sdktrace.SpanProcessor{first}}))
	require.NoError(t, InitOpenTelemetry(Config{ServiceName: "b", SampleRatio: 5, Processors: []sdktrace.SpanProcessor{second}}))

	_, span := StartSpan(context.Background(), "after")
	EndSpan(span, nil)

	assert.Empty(t, first.Ended())
	assert.Len(t, second.Ended(), 1)

	require.NoError(t, ShutdownOpenTelemetry(context.Background()))
	assert.NoError(t, ShutdownOpenTelemetry(context.Background()))
}
