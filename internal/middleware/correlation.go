package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
)

type key int

const CorrelationKey key = 0

const CorrelationHeader = "X-Correlation-ID"

// NewCorrelationID returns a fresh run identifier.
func NewCorrelationID() string {
	return uuid.New().String()
}

// CorrelationTransport stamps outgoing requests with the correlation id
// carried by the request context and logs each round trip.
type CorrelationTransport struct {
	Base http.RoundTripper
}

func NewCorrelationTransport(base http.RoundTripper) *CorrelationTransport {
	return &CorrelationTransport{Base: base}
}

func (t *CorrelationTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}

	ctx := r.Context()
	if id, ok := ctx.Value(CorrelationKey).(string); ok && id != "" && r.Header.Get(CorrelationHeader) == "" {
		// RoundTrippers must not mutate the caller's request.
		r = r.Clone(ctx)
		r.Header.Set(CorrelationHeader, id)
	}

	slog.DebugContext(ctx, "request sent", "method", r.Method, "path", r.URL.Path)
	start := time.Now()

	resp, err := base.RoundTrip(r)
	if err != nil {
		slog.DebugContext(ctx, "request failed", "method", r.Method, "path", r.URL.Path, "error", err, "duration", time.Since(start))
		return nil, err
	}

	slog.DebugContext(ctx, "request completed", "method", r.Method, "path", r.URL.Path, "status", resp.StatusCode, "duration", time.Since(start))
	return resp, nil
}

func GetCorrelationID(ctx context.Context) string {
	if id, ok := ctx.Value(CorrelationKey).(string); ok {
		return id
	}
	return "unknown"
}

func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, CorrelationKey, id)
}
