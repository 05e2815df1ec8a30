package log

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

type contextKey string

const loggerContextKey contextKey = "logger"

// WithContext stores logger in ctx.
func WithContext(ctx context.Context, logger *Logger) context.Context {
	return context.WithValue(ctx, loggerContextKey, logger)
}

// FromContext extracts a logger from ctx, falling back to the default logger.
func FromContext(ctx context.Context) *Logger {
	if logger, ok := ctx.Value(loggerContextKey).(*Logger); ok {
		return logger
	}
	return &Logger{
		Logger:    slog.Default(),
		component: "unknown",
	}
}

// Transport logs every outgoing request and its outcome.
type Transport struct {
	Base   http.RoundTripper
	Logger *Logger
}

// RoundTrip implements http.RoundTripper.
func (t *Transport) RoundTrip(r *http.Request) (*http.Response, error) {
	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}
	start := time.Now()
	resp, err := base.RoundTrip(r)
	duration := time.Since(start).Milliseconds()

	fields := NewFields().
		WithHTTPRequest(r.Method, r.URL.String()).
		WithRequestID(r.Header.Get("X-Request-ID"))
	if err != nil {
		fields = fields.WithError(err).WithErrorType(ErrorTypeNetwork)
		t.Logger.WarnContext(r.Context(), "HTTP request failed", fields.ToSlice()...)
		return nil, err
	}

	level := slog.LevelDebug
	switch {
	case resp.StatusCode >= 500:
		level = slog.LevelError
	case resp.StatusCode >= 400:
		level = slog.LevelWarn
	}
	fields = fields.WithHTTPResponse(resp.StatusCode, duration, resp.StatusCode < 400)
	t.Logger.Logger.Log(r.Context(), level, "HTTP request completed",
		append([]any{FieldComponent, t.Logger.component}, fields.ToSlice()...)...)
	return resp, nil
}
