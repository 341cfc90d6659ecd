package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime"
	"net"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/apilab/apilab/internal/auth"
	"github.com/apilab/apilab/internal/metrics"
	"github.com/apilab/apilab/internal/model"
	"github.com/apilab/apilab/internal/reqctx"
)

// persistTimeout bounds the request log insert. It runs on a context
// detached from the client so a disconnect does not drop the entry.
const persistTimeout = 2 * time.Second

// RequestLogStore persists request log entries.
type RequestLogStore interface {
	CreateRequestLog(ctx context.Context, entry *model.RequestLog) error
}

// TokenSubjecter resolves the user id carried by a bearer header.
type TokenSubjecter interface {
	TokenSubject(header string) (int64, error)
}

// RequestLogPublisher mirrors stored entries to a live stream.
type RequestLogPublisher interface {
	PublishAsync(entry *model.RequestLog)
}

// RequestLogConfig holds configuration for the request log middleware.
type RequestLogConfig struct {
	Logger  *slog.Logger
	Store   RequestLogStore
	Tokens  TokenSubjecter
	Metrics metrics.Recorder
	// Publisher is optional.
	Publisher RequestLogPublisher
}

// RequestLogger returns a middleware that persists one RequestLog per
// request, except for static assets and health probes. Persistence
// failures are logged and never change the response.
func RequestLogger(cfg RequestLogConfig) func(http.Handler) http.Handler {
	if cfg.Metrics == nil {
		cfg.Metrics = metrics.NewNoop()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	logger := cfg.Logger.With("component", "middleware.request_log")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if requestLogExempt(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			ctx, st := reqctx.Ensure(r.Context())
			st.StartedAt = time.Now()
			r = r.WithContext(ctx)

			requestBody := captureRequestBody(r)

			wrapped := wrapResponseWriter(w)
			wrapped.captureBody(model.MaxLoggedResponseBytes - 1)

			next.ServeHTTP(wrapped, r)

			latency := time.Since(st.StartedAt).Milliseconds()
			header := r.Header.Get("Authorization")

			entry := &model.RequestLog{
				Method:      r.Method,
				Path:        truncateRunes(r.URL.Path, model.MaxLoggedPathLength),
				StatusCode:  wrapped.status,
				LatencyMs:   &latency,
				RequestBody: requestBody,
				AuthMethod:  auth.MethodFromHeader(header),
				UserID:      resolveUserID(st, header, cfg.Tokens),
				IPAddress:   clientIP(r.RemoteAddr),
				Timestamp:   time.Now().UTC(),
			}
			if isJSON(wrapped.Header().Get("Content-Type")) {
				if body, ok := wrapped.capturedBody(); ok {
					entry.ResponseBody = &body
				}
			}

			persistCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), persistTimeout)
			defer cancel()

			if err := cfg.Store.CreateRequestLog(persistCtx, entry); err != nil {
				logger.Warn("failed to persist request log",
					slog.String("request_id", GetRequestID(ctx)),
					slog.String("path", entry.Path),
					slog.String("error", err.Error()),
				)
				cfg.Metrics.IncRequestLogStored("failed")
				return
			}
			cfg.Metrics.IncRequestLogStored("success")

			if cfg.Publisher != nil {
				cfg.Publisher.PublishAsync(entry)
			}
		})
	}
}

func requestLogExempt(path string) bool {
	return strings.HasPrefix(path, "/static") || path == "/api/health" || path == "/readyz"
}

// captureRequestBody reads a JSON request body, restores it for the next
// handler and returns its re-serialized form. Non-JSON or malformed bodies
// yield nil.
func captureRequestBody(r *http.Request) *string {
	if r.Body == nil || r.Body == http.NoBody || !isJSON(r.Header.Get("Content-Type")) {
		return nil
	}

	raw, err := io.ReadAll(r.Body)
	_ = r.Body.Close()
	r.Body = io.NopCloser(bytes.NewReader(raw))
	if err != nil {
		return nil
	}

	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil
	}
	normalized, err := json.Marshal(decoded)
	if err != nil {
		return nil
	}

	s := string(normalized)
	return &s
}

// resolveUserID prefers the identity recorded by the handler. For bearer
// headers it falls back to the token subject.
func resolveUserID(st *reqctx.State, header string, tokens TokenSubjecter) *int64 {
	if st.UserID != nil {
		id := *st.UserID
		return &id
	}
	if tokens == nil || auth.MethodFromHeader(header) != model.AuthMethodToken {
		return nil
	}
	id, err := tokens.TokenSubject(header)
	if err != nil {
		return nil
	}
	return &id
}

// isJSON reports whether a Content-Type names application/json or a
// +json subtype.
func isJSON(contentType string) bool {
	if contentType == "" {
		return false
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == "application/json" ||
		(strings.HasPrefix(mediaType, "application/") && strings.HasSuffix(mediaType, "+json"))
}

// clientIP strips the port from remoteAddr. RealIP may have copied an
// arbitrary header value there, so the result is cut to the column size.
func clientIP(remoteAddr string) string {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		host = remoteAddr
	}
	return truncateRunes(host, model.MaxIPAddressLength)
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
