package tracing

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestPropagateToPlugin(t *testing.T) {
	parentCtx := context.Background()
	parentCtx = WithTraceID(parentCtx, "trace-123")
	parentCtx = WithCallID(parentCtx, "call-parent")
	parentCtx = WithPlugin(parentCtx, "com.example.sender")

	childCtx := PropagateToPlugin(parentCtx, "com.example.receiver")

	if GetTraceID(childCtx) != "trace-123" {
		t.Error("Trace ID not propagated")
	}
	if GetCallID(childCtx) == "call-parent" || GetCallID(childCtx) == "" {
		t.Error("Call ID should be regenerated for the receiver")
	}
	if GetPlugin(childCtx) != "com.example.receiver" {
		t.Error("Plugin not updated")
	}
}

func TestPropagateToPluginNoTraceID(t *testing.T) {
	childCtx := PropagateToPlugin(context.Background(), "com.example.receiver")

	if GetTraceID(childCtx) == "" {
		t.Error("Trace ID not generated when missing")
	}
}

func TestPropagateToLogger(t *testing.T) {
	ctx := context.Background()
	ctx = WithTraceID(ctx, "trace-123")
	ctx = WithCallID(ctx, "call-456")
	ctx = WithPlugin(ctx, "com.example.notes")
	ctx = WithCapability(ctx, "ReadConfig")

	var buf bytes.Buffer
	logger := PropagateToLogger(ctx, zerolog.New(&buf))
	logger.Info().Msg("test")

	output := buf.String()
	for _, want := range []string{"trace-123", "call-456", "com.example.notes", "ReadConfig"} {
		if !strings.Contains(output, want) {
			t.Errorf("Log output missing %q: %s", want, output)
		}
	}
}

func TestMergeContext(t *testing.T) {
	source := WithPlugin(WithTraceID(context.Background(), "src-trace"), "src-plugin")
	target := WithTraceID(context.Background(), "dst-trace")

	merged := MergeContext(target, source)

	if GetTraceID(merged) != "dst-trace" {
		t.Error("MergeContext overwrote an existing trace ID")
	}
	if GetPlugin(merged) != "src-plugin" {
		t.Error("MergeContext did not copy the plugin")
	}
}

func TestDetach(t *testing.T) {
	ctx, cancel := context.WithCancel(WithTraceID(context.Background(), "trace"))
	cancel()

	detached := Detach(ctx)

	if detached.Err() != nil {
		t.Error("Detached context should not be cancelled")
	}
	if GetTraceID(detached) != "trace" {
		t.Error("Detached context lost the trace ID")
	}
}

func TestStartSpan(t *testing.T) {
	ctx, span := StartSpan(context.Background(), "test.span")
	EndSpan(span, errors.New("boom"))

	if ctx == nil {
		t.Fatal("StartSpan returned nil context")
	}
}
