package context

import (
	"context"

	"github.com/google/uuid"
)

// TraceContext carries correlation identifiers for a single request.
// TraceID groups all log lines of one request, RequestID is echoed back
// to the client in the X-Request-ID header.
type TraceContext struct {
	TraceID   string
	SpanID    string
	RequestID string
}

type traceKey struct{}

// NewTraceContext generates a fresh set of correlation IDs. Used when a
// request arrives without tracing headers, and by background jobs.
func NewTraceContext() *TraceContext {
	return &TraceContext{
		TraceID:   uuid.NewString(),
		SpanID:    shortID(),
		RequestID: uuid.NewString(),
	}
}

func shortID() string {
	return uuid.NewString()[:16]
}

// WithTrace attaches trace information to the context.
func WithTrace(ctx context.Context, trace *TraceContext) context.Context {
	return context.WithValue(ctx, traceKey{}, trace)
}

// GetTrace returns the trace attached to ctx, or nil.
func GetTrace(ctx context.Context) *TraceContext {
	trace, _ := ctx.Value(traceKey{}).(*TraceContext)
	return trace
}

// GetTraceID returns the trace ID from ctx. Contexts without a trace get
// a throwaway ID so log correlation fields are never empty.
func GetTraceID(ctx context.Context) string {
	if trace := GetTrace(ctx); trace != nil {
		return trace.TraceID
	}
	return uuid.NewString()
}

// GetRequestID returns the request ID from ctx, if any.
func GetRequestID(ctx context.Context) string {
	if trace := GetTrace(ctx); trace != nil {
		return trace.RequestID
	}
	return ""
}
