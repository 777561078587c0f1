package worker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"skill-catalog/internal/infrastructure/cache"

	"github.com/google/uuid"
)

// Task asks a worker to run the finalization job JobID of ProjectID.
type Task struct {
	ProjectID string    `json:"projectId"`
	JobID     uuid.UUID `json:"jobId"`
}

type Queue interface {
	Enqueue(ctx context.Context, t Task) error
	// Dequeue waits up to wait for a task. ok is false when none arrived.
	Dequeue(ctx context.Context, wait time.Duration) (t Task, ok bool, err error)
}

// NewQueue returns a Redis list queue shared by every instance when Redis is
// available, and an in-process queue otherwise.
func NewQueue(redis *cache.Redis, key string, buffer int) Queue {
	if redis.Available() {
		return &RedisQueue{redis: redis, key: key}
	}
	return NewChannelQueue(buffer)
}

type ChannelQueue struct {
	ch chan Task
}

func NewChannelQueue(buffer int) *ChannelQueue {
	if buffer <= 0 {
		buffer = 256
	}
	return &ChannelQueue{ch: make(chan Task, buffer)}
}

var ErrQueueFull = errors.New("queue full")

func (q *ChannelQueue) Enqueue(_ context.Context, t Task) error {
	select {
	case q.ch <- t:
		return nil
	default:
		return ErrQueueFull
	}
}

func (q *ChannelQueue) Dequeue(ctx context.Context, wait time.Duration) (Task, bool, error) {
	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return Task{}, false, ctx.Err()
	case t := <-q.ch:
		return t, true, nil
	case <-timer.C:
		return Task{}, false, nil
	}
}

type RedisQueue struct {
	redis *cache.Redis
	key   string
}

func (q *RedisQueue) Enqueue(ctx context.Context, t Task) error {
	b, err := json.Marshal(t)
	if err != nil {
		return err
	}
	return q.redis.Push(ctx, q.key, string(b))
}

func (q *RedisQueue) Dequeue(ctx context.Context, wait time.Duration) (Task, bool, error) {
	raw, ok, err := q.redis.Pop(ctx, q.key, wait)
	if err != nil || !ok {
		return Task{}, false, err
	}
	var t Task
	if err := json.Unmarshal([]byte(raw), &t); err != nil {
		return Task{}, false, err
	}
	return t, true, nil
}
