package middleware

import (
	"log"
	"net/http"
	"strings"
	"time"
)

// responseWriter wraps http.ResponseWriter to capture status code and size
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	written    int64
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	rw.written += int64(n)
	return n, err
}

// LoggingMiddleware logs one line per request. Durations here include
// analyzer time, so long lines on the analysis routes are expected.
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		wrapped := &responseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}
		next.ServeHTTP(wrapped, r)

		log.Printf(
			"method=%s path=%s tenant=%s status=%d duration=%s bytes=%d ip=%s",
			r.Method,
			r.URL.Path,
			pathTenant(r.URL.Path),
			wrapped.statusCode,
			time.Since(start),
			wrapped.written,
			r.RemoteAddr,
		)
	})
}

// pathTenant extracts the tenant segment from /v1/{tenant}/... paths, "-"
// for everything else. Runs before auth so it cannot read the auth context.
func pathTenant(path string) string {
	parts := strings.SplitN(path, "/", 4)
	if len(parts) >= 3 && parts[1] == "v1" && parts[2] != "" {
		return parts[2]
	}
	return "-"
}
