package web

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	appLog "udhayam/internal/log"
)

const requestIDHeader = "X-Request-ID"

type ctxKey int

const requestIDKey ctxKey = iota

// requestIDFrom returns the id assigned by requestIDMiddleware.
func requestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// requestIDMiddleware propagates or assigns X-Request-ID.
func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey, id)))
	})
}

// responseWriter captures the status code for metrics and logs.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// instrument records metrics and a debug log line for one endpoint.
func (s *Server) instrument(endpoint string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		d := time.Since(start)
		s.metrics.RecordHTTPRequest(endpoint, r.Method, wrapped.statusCode, d)
		appLog.Debug("http request",
			"endpoint", endpoint,
			"method", r.Method,
			"query", r.URL.RawQuery,
			"status", wrapped.statusCode,
			"duration_ms", d.Milliseconds(),
			"request_id", requestIDFrom(r.Context()),
		)
	}
}
