// Package observability carries request-scoped logging state through context.Context
// so that the usecase and UI layers can log with the request's correlation ids
// without depending on the HTTP adapter.
package observability

import (
	"context"
	"log/slog"
)

type ctxKey int

const (
	loggerKey ctxKey = iota
	requestIDKey
	visitorIDKey
)

// ContextWithLogger attaches a non-nil logger to the context.
func ContextWithLogger(ctx context.Context, lg *slog.Logger) context.Context {
	if ctx == nil || lg == nil {
		return ctx
	}
	return context.WithValue(ctx, loggerKey, lg)
}

// LoggerFromContext returns the logger stored in ctx, falling back to
// slog.Default() enriched with whatever correlation ids ctx carries.
func LoggerFromContext(ctx context.Context) *slog.Logger {
	if ctx == nil {
		return slog.Default()
	}
	if lg, ok := ctx.Value(loggerKey).(*slog.Logger); ok && lg != nil {
		return lg
	}
	lg := slog.Default()
	if rid := RequestIDFromContext(ctx); rid != "" {
		lg = lg.With(slog.String("request_id", rid))
	}
	if vid := VisitorIDFromContext(ctx); vid != "" {
		lg = lg.With(slog.String("visitor_id", vid))
	}
	return lg
}

// ContextWithRequestID stores a non-empty request_id in the context.
func ContextWithRequestID(ctx context.Context, requestID string) context.Context {
	return withString(ctx, requestIDKey, requestID)
}

// RequestIDFromContext retrieves the request_id, or "" when none is present.
func RequestIDFromContext(ctx context.Context) string {
	return stringFrom(ctx, requestIDKey)
}

// ContextWithVisitorID stores the browser visitor id owning the UI state.
func ContextWithVisitorID(ctx context.Context, visitorID string) context.Context {
	return withString(ctx, visitorIDKey, visitorID)
}

// VisitorIDFromContext retrieves the visitor id, or "" when none is present.
func VisitorIDFromContext(ctx context.Context) string {
	return stringFrom(ctx, visitorIDKey)
}

func withString(ctx context.Context, key ctxKey, v string) context.Context {
	if ctx == nil || v == "" {
		return ctx
	}
	return context.WithValue(ctx, key, v)
}

func stringFrom(ctx context.Context, key ctxKey) string {
	if ctx == nil {
		return ""
	}
	v, _ := ctx.Value(key).(string)
	return v
}
