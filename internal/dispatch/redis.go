package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisKey is the list the Redis queue pushes to and pops from.
const DefaultRedisKey = "billgraph:tasks"

// Redis is a list-backed queue shared by multiple worker processes. LPUSH on
// enqueue, blocking RPOP on dequeue; a task popped by one worker is gone for
// the rest, and a crashed worker's task is re-enqueued by the dispatcher-level
// retry, giving at-least-once delivery.
type Redis struct {
	client *redis.Client
	key    string
}

func NewRedis(client *redis.Client, key string) *Redis {
	if key == "" {
		key = DefaultRedisKey
	}
	return &Redis{client: client, key: key}
}

func (r *Redis) Enqueue(ctx context.Context, task Task) error {
	payload, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("marshal task: %w", err)
	}
	if err := r.client.LPush(ctx, r.key, payload).Err(); err != nil {
		return fmt.Errorf("enqueue task: %w", err)
	}
	return nil
}

func (r *Redis) Dequeue(ctx context.Context) (Task, error) {
	result, err := r.client.BRPop(ctx, 0, r.key).Result()
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return Task{}, ctx.Err()
		}
		return Task{}, fmt.Errorf("dequeue task: %w", err)
	}
	// BRPop returns [key, value].
	var task Task
	if err := json.Unmarshal([]byte(result[1]), &task); err != nil {
		return Task{}, fmt.Errorf("unmarshal task: %w", err)
	}
	return task, nil
}

// Len reports the queue depth.
func (r *Redis) Len(ctx context.Context) (int64, error) {
	return r.client.LLen(ctx, r.key).Result()
}
