// Package metrics provides lightweight hooks for instrumentation.
package metrics

import "time"

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus, StatsD, etc.
type Recorder interface {
	// HTTP metrics
	ObserveRequestDuration(duration time.Duration)

	// Todo metrics
	IncTodoCreated()
	IncTodoUpdated()
	IncTodoDeleted()

	// Auth metrics
	IncAuthAttempt(result string) // result: "success" or "failure"

	// Error playground metrics
	IncChaosInjected(kind string) // kind: "latency" or "error"

	// Request log pipeline metrics
	IncRequestLogStored(status string)   // status: "success" or "failed"
	IncLogStreamPublished(status string) // status: "success" or "dropped"
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}
