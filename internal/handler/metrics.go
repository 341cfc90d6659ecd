package handler

import (
	"fmt"
	"net/http"

	"github.com/apilab/apilab/internal/metrics"
)

// MetricsHandler exposes in-memory metrics.
type MetricsHandler struct {
	snapshotter metrics.Snapshotter
	callers     *CallerResolver
}

// NewMetricsHandler creates a new MetricsHandler. Requests must carry a
// bearer token.
func NewMetricsHandler(snapshotter metrics.Snapshotter, callers *CallerResolver) *MetricsHandler {
	return &MetricsHandler{snapshotter: snapshotter, callers: callers}
}

// Metrics returns metrics in Prometheus exposition format.
func (h *MetricsHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	if _, apiErr := h.callers.ResolveToken(r); apiErr != nil {
		apiErr.Write(w)
		return
	}
	if h.snapshotter == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	snap := h.snapshotter.Snapshot()

	w.Header().Set("Content-Type", "text/plain; version=0.0.4")

	writeMetric(w, "apilab_request_duration_seconds_count %d\n", snap.RequestDurationCount)
	writeMetric(w, "apilab_request_duration_seconds_sum %.6f\n", float64(snap.RequestDurationTotalNs)/1e9)

	writeMetric(w, "apilab_todos_created_total %d\n", snap.TodosCreated)
	writeMetric(w, "apilab_todos_updated_total %d\n", snap.TodosUpdated)
	writeMetric(w, "apilab_todos_deleted_total %d\n", snap.TodosDeleted)

	writeMetric(w, "apilab_auth_attempts_total{result=\"success\"} %d\n", snap.AuthSuccesses)
	writeMetric(w, "apilab_auth_attempts_total{result=\"failure\"} %d\n", snap.AuthFailures)

	writeMetric(w, "apilab_chaos_injected_total{kind=\"latency\"} %d\n", snap.ChaosLatencyInjected)
	writeMetric(w, "apilab_chaos_injected_total{kind=\"error\"} %d\n", snap.ChaosErrorsInjected)

	writeMetric(w, "apilab_request_logs_stored_total{status=\"success\"} %d\n", snap.RequestLogsStored)
	writeMetric(w, "apilab_request_logs_stored_total{status=\"failed\"} %d\n", snap.RequestLogsFailed)

	writeMetric(w, "apilab_log_stream_published_total{status=\"success\"} %d\n", snap.LogStreamPublished)
	writeMetric(w, "apilab_log_stream_published_total{status=\"dropped\"} %d\n", snap.LogStreamDropped)
}

func writeMetric(w http.ResponseWriter, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}
