package metrics

import "time"

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

// ObserveRequestDuration is a no-op.
func (n *NoopRecorder) ObserveRequestDuration(duration time.Duration) {}

// IncTodoCreated is a no-op.
func (n *NoopRecorder) IncTodoCreated() {}

// IncTodoUpdated is a no-op.
func (n *NoopRecorder) IncTodoUpdated() {}

// IncTodoDeleted is a no-op.
func (n *NoopRecorder) IncTodoDeleted() {}

// IncAuthAttempt is a no-op.
func (n *NoopRecorder) IncAuthAttempt(result string) {}

// IncChaosInjected is a no-op.
func (n *NoopRecorder) IncChaosInjected(kind string) {}

// IncRequestLogStored is a no-op.
func (n *NoopRecorder) IncRequestLogStored(status string) {}

// IncLogStreamPublished is a no-op.
func (n *NoopRecorder) IncLogStreamPublished(status string) {}
