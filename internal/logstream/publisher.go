package logstream

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/redis/go-redis/v9"

	"github.com/apilab/apilab/internal/metrics"
	"github.com/apilab/apilab/internal/model"
)

const (
	// StreamKey is the Redis stream holding recent request logs.
	StreamKey = "stream:request_logs"

	// DefaultMaxLen is the approximate stream length kept when none is set.
	DefaultMaxLen = 1000

	// PublishTimeout is the max time to wait for Redis publish.
	PublishTimeout = 100 * time.Millisecond

	payloadField = "payload"
)

// Event is the stream representation of a request log entry.
type Event struct {
	EventID    string           `json:"event_id"`
	LogID      int64            `json:"log_id"`
	Method     string           `json:"method"`
	Path       string           `json:"path"`
	StatusCode int              `json:"status_code"`
	LatencyMs  *int64           `json:"latency_ms"`
	AuthMethod model.AuthMethod `json:"auth_method"`
	UserID     *int64           `json:"user_id"`
	IPAddress  string           `json:"ip_address"`
	Timestamp  time.Time        `json:"timestamp"`
}

// Publisher appends request log events to the Redis stream.
type Publisher struct {
	redis   *redis.Client
	maxLen  int64
	logger  *slog.Logger
	metrics metrics.Recorder

	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

// NewPublisher creates a Publisher that trims the stream to about maxLen
// entries.
func NewPublisher(client *redis.Client, maxLen int64, logger *slog.Logger, recorder metrics.Recorder) *Publisher {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	if maxLen <= 0 {
		maxLen = DefaultMaxLen
	}
	return &Publisher{
		redis:   client,
		maxLen:  maxLen,
		logger:  logger.With("component", "logstream.publisher"),
		metrics: recorder,
		entropy: ulid.Monotonic(rand.Reader, 0),
	}
}

// NewEvent converts a persisted entry into a stream event.
func (p *Publisher) NewEvent(entry *model.RequestLog) Event {
	p.mu.Lock()
	id := ulid.MustNew(ulid.Timestamp(entry.Timestamp), p.entropy)
	p.mu.Unlock()

	return Event{
		EventID:    id.String(),
		LogID:      entry.ID,
		Method:     entry.Method,
		Path:       entry.Path,
		StatusCode: entry.StatusCode,
		LatencyMs:  entry.LatencyMs,
		AuthMethod: entry.AuthMethod,
		UserID:     entry.UserID,
		IPAddress:  entry.IPAddress,
		Timestamp:  entry.Timestamp,
	}
}

// Publish adds an event to the stream synchronously.
func (p *Publisher) Publish(ctx context.Context, event Event) (string, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return "", fmt.Errorf("marshal event: %w", err)
	}

	result, err := p.redis.XAdd(ctx, &redis.XAddArgs{
		Stream: StreamKey,
		MaxLen: p.maxLen,
		Approx: true,
		ID:     "*",
		Values: map[string]interface{}{
			payloadField: string(data),
		},
	}).Result()
	if err != nil {
		return "", fmt.Errorf("xadd: %w", err)
	}

	return result, nil
}

// PublishAsync publishes entry without blocking the caller.
// Errors are logged but not returned (fire-and-forget).
func (p *Publisher) PublishAsync(entry *model.RequestLog) {
	event := p.NewEvent(entry)

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), PublishTimeout)
		defer cancel()

		streamID, err := p.Publish(ctx, event)
		if err != nil {
			p.logger.Warn("failed to publish request log",
				"log_id", event.LogID,
				"error", err,
			)
			p.metrics.IncLogStreamPublished("dropped")
			return
		}

		p.logger.Debug("request log published",
			"log_id", event.LogID,
			"stream_id", streamID,
		)
		p.metrics.IncLogStreamPublished("success")
	}()
}
