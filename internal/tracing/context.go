package tracing

import (
	"context"

	"github.com/google/uuid"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

// ContextKey is the type for context keys
type ContextKey string

const (
	// TraceIDKey is the context key for trace ID
	TraceIDKey ContextKey = "trace_id"
	// CallIDKey is the context key for the id of one capability call
	CallIDKey ContextKey = "call_id"
	// PluginKey is the context key for the calling plugin's package name
	PluginKey ContextKey = "plugin"
	// CapabilityKey is the context key for the capability being dispatched
	CapabilityKey ContextKey = "capability"
)

// callIDAlphabet keeps call ids readable in logs
const callIDAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// TraceContext holds tracing information
type TraceContext struct {
	TraceID    string
	CallID     string
	Plugin     string
	Capability string
}

// NewTraceID generates a new trace ID
func NewTraceID() string {
	return uuid.New().String()
}

// NewCallID generates a short id for one capability call
func NewCallID() string {
	id, err := gonanoid.Generate(callIDAlphabet, 12)
	if err != nil {
		return uuid.New().String()[:12]
	}
	return id
}

// WithTraceID adds a trace ID to the context
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, TraceIDKey, traceID)
}

// WithCallID adds a call ID to the context
func WithCallID(ctx context.Context, callID string) context.Context {
	return context.WithValue(ctx, CallIDKey, callID)
}

// WithPlugin adds the calling plugin's package name to the context
func WithPlugin(ctx context.Context, packageName string) context.Context {
	return context.WithValue(ctx, PluginKey, packageName)
}

// WithCapability adds the dispatched capability to the context
func WithCapability(ctx context.Context, capability string) context.Context {
	return context.WithValue(ctx, CapabilityKey, capability)
}

func stringValue(ctx context.Context, key ContextKey) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(key).(string); ok {
		return v
	}
	return ""
}

// GetTraceID retrieves the trace ID from the context
func GetTraceID(ctx context.Context) string { return stringValue(ctx, TraceIDKey) }

// GetCallID retrieves the call ID from the context
func GetCallID(ctx context.Context) string { return stringValue(ctx, CallIDKey) }

// GetPlugin retrieves the plugin package name from the context
func GetPlugin(ctx context.Context) string { return stringValue(ctx, PluginKey) }

// GetCapability retrieves the capability from the context
func GetCapability(ctx context.Context) string { return stringValue(ctx, CapabilityKey) }

// FromContext extracts all tracing information from the context
func FromContext(ctx context.Context) *TraceContext {
	return &TraceContext{
		TraceID:    GetTraceID(ctx),
		CallID:     GetCallID(ctx),
		Plugin:     GetPlugin(ctx),
		Capability: GetCapability(ctx),
	}
}

// NewContext creates a new context with tracing information
func NewContext(ctx context.Context, tc *TraceContext) context.Context {
	if tc.TraceID != "" {
		ctx = WithTraceID(ctx, tc.TraceID)
	}
	if tc.CallID != "" {
		ctx = WithCallID(ctx, tc.CallID)
	}
	if tc.Plugin != "" {
		ctx = WithPlugin(ctx, tc.Plugin)
	}
	if tc.Capability != "" {
		ctx = WithCapability(ctx, tc.Capability)
	}
	return ctx
}

// NewCallContext tags ctx for one capability call. An existing trace ID is
// kept so nested calls stay on the same trace.
func NewCallContext(ctx context.Context, packageName, capability string) context.Context {
	if GetTraceID(ctx) == "" {
		ctx = WithTraceID(ctx, NewTraceID())
	}
	ctx = WithCallID(ctx, NewCallID())
	ctx = WithPlugin(ctx, packageName)
	return WithCapability(ctx, capability)
}
