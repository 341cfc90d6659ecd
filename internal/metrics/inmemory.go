package metrics

import (
	"sync/atomic"
	"time"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	RequestDurationCount   uint64
	RequestDurationTotalNs int64

	TodosCreated uint64
	TodosUpdated uint64
	TodosDeleted uint64

	AuthSuccesses uint64
	AuthFailures  uint64

	ChaosLatencyInjected uint64
	ChaosErrorsInjected  uint64

	RequestLogsStored uint64
	RequestLogsFailed uint64

	LogStreamPublished uint64
	LogStreamDropped   uint64
}

// InMemoryRecorder stores metrics in memory.
type InMemoryRecorder struct {
	requestDurationCount   uint64
	requestDurationTotalNs int64

	todosCreated uint64
	todosUpdated uint64
	todosDeleted uint64

	authSuccesses uint64
	authFailures  uint64

	chaosLatencyInjected uint64
	chaosErrorsInjected  uint64

	requestLogsStored uint64
	requestLogsFailed uint64

	logStreamPublished uint64
	logStreamDropped   uint64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	return Snapshot{
		RequestDurationCount:   atomic.LoadUint64(&m.requestDurationCount),
		RequestDurationTotalNs: atomic.LoadInt64(&m.requestDurationTotalNs),
		TodosCreated:           atomic.LoadUint64(&m.todosCreated),
		TodosUpdated:           atomic.LoadUint64(&m.todosUpdated),
		TodosDeleted:           atomic.LoadUint64(&m.todosDeleted),
		AuthSuccesses:          atomic.LoadUint64(&m.authSuccesses),
		AuthFailures:           atomic.LoadUint64(&m.authFailures),
		ChaosLatencyInjected:   atomic.LoadUint64(&m.chaosLatencyInjected),
		ChaosErrorsInjected:    atomic.LoadUint64(&m.chaosErrorsInjected),
		RequestLogsStored:      atomic.LoadUint64(&m.requestLogsStored),
		RequestLogsFailed:      atomic.LoadUint64(&m.requestLogsFailed),
		LogStreamPublished:     atomic.LoadUint64(&m.logStreamPublished),
		LogStreamDropped:       atomic.LoadUint64(&m.logStreamDropped),
	}
}

// ObserveRequestDuration records request duration.
func (m *InMemoryRecorder) ObserveRequestDuration(duration time.Duration) {
	atomic.AddUint64(&m.requestDurationCount, 1)
	atomic.AddInt64(&m.requestDurationTotalNs, duration.Nanoseconds())
}

// IncTodoCreated increments todo created counter.
func (m *InMemoryRecorder) IncTodoCreated() {
	atomic.AddUint64(&m.todosCreated, 1)
}

// IncTodoUpdated increments todo updated counter.
func (m *InMemoryRecorder) IncTodoUpdated() {
	atomic.AddUint64(&m.todosUpdated, 1)
}

// IncTodoDeleted increments todo deleted counter.
func (m *InMemoryRecorder) IncTodoDeleted() {
	atomic.AddUint64(&m.todosDeleted, 1)
}

// IncAuthAttempt counts an authentication outcome.
func (m *InMemoryRecorder) IncAuthAttempt(result string) {
	if result == "success" {
		atomic.AddUint64(&m.authSuccesses, 1)
		return
	}
	atomic.AddUint64(&m.authFailures, 1)
}

// IncChaosInjected counts injected latency or errors.
func (m *InMemoryRecorder) IncChaosInjected(kind string) {
	switch kind {
	case "latency":
		atomic.AddUint64(&m.chaosLatencyInjected, 1)
	case "error":
		atomic.AddUint64(&m.chaosErrorsInjected, 1)
	}
}

// IncRequestLogStored counts request log persistence outcomes.
func (m *InMemoryRecorder) IncRequestLogStored(status string) {
	if status == "success" {
		atomic.AddUint64(&m.requestLogsStored, 1)
		return
	}
	atomic.AddUint64(&m.requestLogsFailed, 1)
}

// IncLogStreamPublished counts live stream publish outcomes.
func (m *InMemoryRecorder) IncLogStreamPublished(status string) {
	if status == "success" {
		atomic.AddUint64(&m.logStreamPublished, 1)
		return
	}
	atomic.AddUint64(&m.logStreamDropped, 1)
}
