package tracing

import (
	"context"

	"github.com/rs/zerolog"
)

// PropagateToPlugin prepares ctx for delivery to another plugin. The trace
// is kept, the call ID is replaced and the target plugin recorded.
func PropagateToPlugin(ctx context.Context, packageName string) context.Context {
	traceID := GetTraceID(ctx)
	if traceID == "" {
		traceID = NewTraceID()
	}

	newCtx := WithTraceID(ctx, traceID)
	newCtx = WithCallID(newCtx, NewCallID())
	return WithPlugin(newCtx, packageName)
}

// PropagateToLogger adds tracing context to a zerolog logger
func PropagateToLogger(ctx context.Context, logger zerolog.Logger) zerolog.Logger {
	tc := FromContext(ctx)

	lc := logger.With()
	if tc.TraceID != "" {
		lc = lc.Str("trace_id", tc.TraceID)
	}
	if tc.CallID != "" {
		lc = lc.Str("call_id", tc.CallID)
	}
	if tc.Plugin != "" {
		lc = lc.Str("plugin", tc.Plugin)
	}
	if tc.Capability != "" {
		lc = lc.Str("capability", tc.Capability)
	}

	return lc.Logger()
}

// MergeContext copies tracing values from source that target lacks
func MergeContext(target, source context.Context) context.Context {
	tc := FromContext(source)

	if tc.TraceID != "" && GetTraceID(target) == "" {
		target = WithTraceID(target, tc.TraceID)
	}
	if tc.CallID != "" && GetCallID(target) == "" {
		target = WithCallID(target, tc.CallID)
	}
	if tc.Plugin != "" && GetPlugin(target) == "" {
		target = WithPlugin(target, tc.Plugin)
	}
	if tc.Capability != "" && GetCapability(target) == "" {
		target = WithCapability(target, tc.Capability)
	}

	return target
}

// Detach returns a background context carrying ctx's tracing values
func Detach(ctx context.Context) context.Context {
	return NewContext(context.Background(), FromContext(ctx))
}
