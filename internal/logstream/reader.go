package logstream

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Reader reads recent events back from the stream.
type Reader struct {
	redis *redis.Client
}

// NewReader creates a Reader.
func NewReader(client *redis.Client) *Reader {
	return &Reader{redis: client}
}

// Recent returns up to count events, newest first. Entries whose payload
// cannot be decoded are skipped.
func (r *Reader) Recent(ctx context.Context, count int64) ([]Event, error) {
	messages, err := r.redis.XRevRangeN(ctx, StreamKey, "+", "-", count).Result()
	if err != nil {
		return nil, fmt.Errorf("xrevrange: %w", err)
	}
	return decodeMessages(messages), nil
}

func decodeMessages(messages []redis.XMessage) []Event {
	events := make([]Event, 0, len(messages))
	for _, msg := range messages {
		raw, ok := msg.Values[payloadField].(string)
		if !ok {
			continue
		}
		var event Event
		if err := json.Unmarshal([]byte(raw), &event); err != nil {
			continue
		}
		events = append(events, event)
	}
	return events
}

// Ping checks the Redis connection.
func (r *Reader) Ping(ctx context.Context) error {
	return r.redis.Ping(ctx).Err()
}
