package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/apilab/apilab/internal/metrics"
	"github.com/apilab/apilab/internal/reqctx"
)

// Logger returns a middleware that writes one structured access line per
// request. Credentials and bodies are never logged.
func Logger(logger *slog.Logger, recorder metrics.Recorder) func(http.Handler) http.Handler {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			ctx, st := reqctx.Ensure(r.Context())
			wrapped := wrapResponseWriter(w)

			next.ServeHTTP(wrapped, r.WithContext(ctx))

			duration := time.Since(start)
			recorder.ObserveRequestDuration(duration)

			attrs := []slog.Attr{
				slog.String("request_id", GetRequestID(ctx)),
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status_code", wrapped.status),
				slog.Float64("duration_ms", float64(duration.Microseconds())/1000),
				slog.String("remote_addr", r.RemoteAddr),
				slog.String("user_agent", r.UserAgent()),
			}

			if st.AuthMethod != "" {
				attrs = append(attrs, slog.String("auth_method", string(st.AuthMethod)))
			}
			if st.UserID != nil {
				attrs = append(attrs, slog.Int64("user_id", *st.UserID))
			}
			if st.ChaosEnabled {
				attrs = append(attrs, slog.Float64("chaos_level", st.ChaosLevel))
			}

			level := slog.LevelInfo
			if wrapped.status >= 500 {
				level = slog.LevelError
			} else if wrapped.status >= 400 {
				level = slog.LevelWarn
			}

			logger.LogAttrs(ctx, level, "http request", attrs...)
		})
	}
}
