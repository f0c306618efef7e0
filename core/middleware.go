package core

import (
	"net/http"
	"time"

	"github.com/google/uuid"
)

// responseWriter wraps http.ResponseWriter to capture the status code a
// handler actually sent, since http.ResponseWriter itself has no getter.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	written    bool
}

func (rw *responseWriter) WriteHeader(code int) {
	if !rw.written {
		rw.statusCode = code
		rw.written = true
		rw.ResponseWriter.WriteHeader(code)
	}
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	if !rw.written {
		rw.statusCode = http.StatusOK
		rw.written = true
	}
	return rw.ResponseWriter.Write(b)
}

// Flush implements http.Flusher so a streamed LLM Gateway response
// (server-sent events) still flushes through the wrapped writer.
func (rw *responseWriter) Flush() {
	if flusher, ok := rw.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

const requestIDHeader = "X-Request-ID"

// RequestIDMiddleware makes sure every request carries an X-Request-ID:
// it honors one set by an upstream hop (Orchestrator calling LLM
// Gateway calling a provider) or mints a fresh one at the edge, attaches
// it to the context via WithRequestID so every *WithContext log line
// downstream includes it, and echoes it back on the response so a
// client can correlate a single call across C1-C5.
func RequestIDMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(requestIDHeader)
			if id == "" {
				id = uuid.NewString()
			}

			w.Header().Set(requestIDHeader, id)
			ctx := WithRequestID(r.Context(), id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// LoggingMiddleware logs HTTP requests through logger's *WithContext
// methods, so entries pick up the request id RequestIDMiddleware
// attached to the context. In devMode it logs every request; otherwise
// it only logs non-2xx responses and requests slower than one second,
// to keep steady-state traffic to the Retrieval Gateway and LLM Gateway
// from drowning routine operation in log volume.
func LoggingMiddleware(logger Logger, devMode bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			wrapped := &responseWriter{
				ResponseWriter: w,
				statusCode:     http.StatusOK,
			}

			next.ServeHTTP(wrapped, r)

			duration := time.Since(start)
			shouldLog := devMode || wrapped.statusCode >= 400 || duration > time.Second

			if shouldLog && logger != nil {
				logData := map[string]interface{}{
					"method":      r.Method,
					"path":        r.URL.Path,
					"status":      wrapped.statusCode,
					"duration_ms": duration.Milliseconds(),
					"remote_addr": r.RemoteAddr,
					"user_agent":  r.UserAgent(),
				}

				if r.URL.RawQuery != "" {
					logData["query"] = r.URL.RawQuery
				}
				if r.ContentLength > 0 {
					logData["content_length"] = r.ContentLength
				}

				switch {
				case wrapped.statusCode >= 500:
					logger.ErrorWithContext(r.Context(), "request failed", logData)
				case wrapped.statusCode >= 400:
					logger.WarnWithContext(r.Context(), "request rejected", logData)
				case duration > time.Second:
					logger.WarnWithContext(r.Context(), "request slow", logData)
				default:
					logger.InfoWithContext(r.Context(), "request handled", logData)
				}
			}
		})
	}
}
