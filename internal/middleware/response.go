package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
)

// responseWriter wraps http.ResponseWriter to capture the status code and,
// when a capture limit is set, a copy of the body.
type responseWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool

	size    int
	limit   int
	body    bytes.Buffer
	dropped bool
}

func wrapResponseWriter(w http.ResponseWriter) *responseWriter {
	if rw, ok := w.(*responseWriter); ok {
		return rw
	}
	return &responseWriter{ResponseWriter: w, status: http.StatusOK}
}

// captureBody starts buffering up to limit bytes of the response body.
func (rw *responseWriter) captureBody(limit int) {
	if limit > rw.limit {
		rw.limit = limit
	}
}

func (rw *responseWriter) WriteHeader(code int) {
	if rw.wroteHeader {
		return
	}
	rw.status = code
	rw.wroteHeader = true
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	if !rw.wroteHeader {
		rw.WriteHeader(http.StatusOK)
	}
	n, err := rw.ResponseWriter.Write(b)
	rw.size += n
	if rw.limit > 0 && !rw.dropped {
		if rw.body.Len()+n > rw.limit {
			rw.dropped = true
			rw.body.Reset()
		} else {
			rw.body.Write(b[:n])
		}
	}
	return n, err
}

// Flush implements http.Flusher when the underlying writer supports it.
func (rw *responseWriter) Flush() {
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

// capturedBody returns the buffered body, or false when nothing was
// captured or the body exceeded the limit.
func (rw *responseWriter) capturedBody() (string, bool) {
	if rw.limit == 0 || rw.dropped || rw.size == 0 {
		return "", false
	}
	return rw.body.String(), true
}

// writeJSON writes v as a JSON response body.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
