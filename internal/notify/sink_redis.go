package notify

import (
	"context"
	"encoding/json"
	"fmt"

	platformredis "amparo/internal/platform/redis"
)

// outboxKey is the Redis list the external fan-out worker consumes.
const outboxKey = "amparo:notifications:outbox"

// RedisSink pushes events onto a Redis list acting as the outbox queue.
type RedisSink struct {
	client *platformredis.Client
}

func NewRedisSink(client *platformredis.Client) *RedisSink {
	return &RedisSink{client: client}
}

func (s *RedisSink) Push(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}
	if err := s.client.LPush(ctx, outboxKey, payload).Err(); err != nil {
		return fmt.Errorf("push notification to outbox: %w", err)
	}
	return nil
}
