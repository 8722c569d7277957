package restapi

import (
	"log/slog"
	"net/http"
	"time"

	"journeyplanner.org/internal/logging"
)

// NewRequestLoggingMiddleware logs one record per request and hands handlers a logger
// tagged with the request id.
func NewRequestLoggingMiddleware(logger *slog.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			reqLogger := logger.With(slog.String("request_id", GetRequestID(r.Context())))
			rec := newStatusRecorder(w)

			next.ServeHTTP(rec, r.WithContext(logging.WithLogger(r.Context(), reqLogger)))

			logging.LogHTTPRequest(reqLogger,
				r.Method,
				r.URL.Path,
				rec.status,
				float64(time.Since(start).Microseconds())/1000,
				slog.String("user_agent", r.Header.Get("User-Agent")),
				slog.String("component", "http_server"))
		})
	}
}
