package middleware

import (
	"net/http"
	"time"

	"surgical-records/internal/platform/logger"

	chimw "github.com/go-chi/chi/v5/middleware"
)

// RequestLogger deja una línea por request. /health y /metrics van en debug.
func RequestLogger(log logger.Logger) func(http.Handler) http.Handler {
	if log == nil {
		log = logger.NewNop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			fields := map[string]any{
				"method":      r.Method,
				"path":        r.URL.Path,
				"status":      status,
				"bytes":       ww.BytesWritten(),
				"duration_ms": time.Since(start).Milliseconds(),
				"request_id":  chimw.GetReqID(r.Context()),
			}

			switch {
			case r.URL.Path == "/health" || r.URL.Path == "/metrics":
				log.Debug("http request", fields)
			case status >= http.StatusInternalServerError:
				log.Error("http request", fields)
			case status >= http.StatusBadRequest:
				log.Warn("http request", fields)
			default:
				log.Info("http request", fields)
			}
		})
	}
}
