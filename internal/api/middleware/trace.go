// Package middleware holds the HTTP middleware wrapped around the REST server.
package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"regexp"

	"github.com/google/uuid"
	"github.com/phrazzld/press-api/internal/platform/logger"
)

// RequestIDHeader carries the trace ID in both directions.
const RequestIDHeader = "X-Request-ID"

type traceKey struct{}

// acceptable client-supplied request IDs
var validTraceID = regexp.MustCompile(`^[A-Za-z0-9._-]{1,64}$`)

// SetTraceID returns a copy of ctx carrying id.
func SetTraceID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, traceKey{}, id)
}

// GetTraceID returns the trace ID stored in ctx, or "".
func GetTraceID(ctx context.Context) string {
	id, _ := ctx.Value(traceKey{}).(string)
	return id
}

// Trace assigns each request a trace ID, echoes it in the X-Request-ID
// response header and stores a logger tagged with it in the request context.
// A well-formed X-Request-ID sent by the client is reused.
func Trace(base *slog.Logger) func(http.Handler) http.Handler {
	if base == nil {
		base = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			traceID := r.Header.Get(RequestIDHeader)
			if !validTraceID.MatchString(traceID) {
				traceID = uuid.NewString()
			}
			w.Header().Set(RequestIDHeader, traceID)

			log := base.With(slog.String("trace_id", traceID))
			ctx := SetTraceID(r.Context(), traceID)
			ctx = logger.WithLogger(ctx, log)

			log.Debug("request started",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.String("remote_addr", r.RemoteAddr))

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
