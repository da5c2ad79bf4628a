package middleware

import (
	"log/slog"
	"net/http"
	"time"
)

// Logging writes one line per request. Server errors are logged at error
// level so they surface without enabling debug output.
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			tw := newTrackingWriter(w)

			next.ServeHTTP(tw, r)

			level := slog.LevelInfo
			if tw.status >= http.StatusInternalServerError {
				level = slog.LevelError
			}

			logger.LogAttrs(r.Context(), level, "request",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", tw.status),
				slog.Int64("duration_ms", time.Since(start).Milliseconds()),
				slog.String("request_id", GetRequestID(r)),
			)
		})
	}
}
