package cache

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"skill-catalog/internal/config"
	"skill-catalog/internal/pkg/logger"

	"github.com/redis/go-redis/v9"
)

var ErrUnavailable = errors.New("redis unavailable")

// Redis wraps a go-redis client. When Redis is disabled or unreachable at
// startup the wrapper stays usable and every call reports ErrUnavailable, so
// callers can fall back to in-process delivery.
type Redis struct {
	client *redis.Client
	logger *logger.Logger

	warnedUnavailable atomic.Bool
}

func NewRedis(cfg config.RedisConfig, log *logger.Logger) *Redis {
	log = logger.OrNop(log).With("component", "redis")
	if cfg.Disabled {
		log.Info("redis disabled by configuration")
		return &Redis{logger: log}
	}

	addr := fmt.Sprintf("%s:%s", cfg.Host, cfg.Port)
	client := redis.NewClient(&redis.Options{
		Addr:        addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Warn("redis unavailable, using in-process fallbacks", "addr", addr, "error", err)
		_ = client.Close()
		return &Redis{logger: log}
	}

	log.Info("redis connected", "addr", addr)
	return &Redis{client: client, logger: log}
}

func (r *Redis) Available() bool {
	return r != nil && r.client != nil
}

func (r *Redis) warnUnavailableOnce(err error) {
	if r == nil || r.logger == nil {
		return
	}
	if r.warnedUnavailable.CompareAndSwap(false, true) {
		r.logger.Warn("redis call failed", "error", err)
	}
}

func (r *Redis) Ping(ctx context.Context) error {
	if !r.Available() {
		return ErrUnavailable
	}
	return r.client.Ping(ctx).Err()
}

func (r *Redis) Close() error {
	if !r.Available() {
		return nil
	}
	return r.client.Close()
}

// Push appends value to the list at key (LPUSH).
func (r *Redis) Push(ctx context.Context, key, value string) error {
	if !r.Available() {
		return ErrUnavailable
	}
	if err := r.client.LPush(ctx, key, value).Err(); err != nil {
		r.warnUnavailableOnce(err)
		return err
	}
	return nil
}

// Pop blocks up to timeout for the oldest value of the list at key (BRPOP).
// ok is false when the timeout elapsed with nothing to pop.
func (r *Redis) Pop(ctx context.Context, key string, timeout time.Duration) (string, bool, error) {
	if !r.Available() {
		return "", false, ErrUnavailable
	}
	res, err := r.client.BRPop(ctx, timeout, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		r.warnUnavailableOnce(err)
		return "", false, err
	}
	if len(res) != 2 {
		return "", false, nil
	}
	return res[1], true, nil
}

func (r *Redis) Publish(ctx context.Context, channel string, payload []byte) error {
	if !r.Available() {
		return ErrUnavailable
	}
	if err := r.client.Publish(ctx, channel, payload).Err(); err != nil {
		r.warnUnavailableOnce(err)
		return err
	}
	return nil
}

// Subscribe starts a subscription on channel and calls onMsg for each payload
// until ctx is done.
func (r *Redis) Subscribe(ctx context.Context, channel string, onMsg func(payload []byte)) error {
	if !r.Available() {
		return ErrUnavailable
	}
	if onMsg == nil {
		return fmt.Errorf("onMsg callback required")
	}

	sub := r.client.Subscribe(ctx, channel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("redis subscribe: %w", err)
	}

	go func() {
		defer sub.Close()
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case m, ok := <-ch:
				if !ok || m == nil {
					return
				}
				onMsg([]byte(m.Payload))
			}
		}
	}()
	return nil
}
