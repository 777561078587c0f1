package events

import (
	"context"
	"encoding/json"

	"skill-catalog/internal/infrastructure/cache"
	"skill-catalog/internal/pkg/logger"
)

// Bus publishes events to local subscribers. With Redis available, events
// travel through a pub/sub channel so every instance's subscribers see them;
// otherwise they are delivered in process.
type Bus struct {
	redis   *cache.Redis
	channel string
	deliver func(Event)
	log     *logger.Logger
}

func NewBus(redis *cache.Redis, channel string, deliver func(Event), log *logger.Logger) *Bus {
	if deliver == nil {
		deliver = func(Event) {}
	}
	return &Bus{
		redis:   redis,
		channel: channel,
		deliver: deliver,
		log:     logger.OrNop(log).With("component", "event_bus"),
	}
}

func (b *Bus) Publish(ctx context.Context, e Event) {
	if !b.redis.Available() {
		b.deliver(e)
		return
	}
	raw, err := json.Marshal(e)
	if err != nil {
		b.log.Warn("event marshal failed", "type", e.Type, "error", err)
		return
	}
	if err := b.redis.Publish(ctx, b.channel, raw); err != nil {
		b.log.Warn("event publish failed, delivering locally", "type", e.Type, "error", err)
		b.deliver(e)
	}
}

// StartForwarder relays events from the Redis channel to local subscribers
// until ctx is done. It is a no-op without Redis.
func (b *Bus) StartForwarder(ctx context.Context) error {
	if !b.redis.Available() {
		return nil
	}
	return b.redis.Subscribe(ctx, b.channel, func(payload []byte) {
		var e Event
		if err := json.Unmarshal(payload, &e); err != nil {
			b.log.Warn("bad event payload", "error", err)
			return
		}
		b.deliver(e)
	})
}
