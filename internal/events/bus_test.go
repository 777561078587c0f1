package events

import (
	"context"
	"testing"

	"skill-catalog/internal/config"
	"skill-catalog/internal/infrastructure/cache"

	"github.com/stretchr/testify/require"
)

func TestBus_DeliversLocallyWithoutRedis(t *testing.T) {
	rdb := cache.NewRedis(config.RedisConfig{Disabled: true}, nil)

	var got []Event
	bus := NewBus(rdb, "catalog:events", func(e Event) { got = append(got, e) }, nil)
	require.NoError(t, bus.StartForwarder(context.Background()))

	bus.Publish(context.Background(), New(FinalizationStarted, "p1"))

	require.Len(t, got, 1)
	require.Equal(t, FinalizationStarted, got[0].Type)
	require.Equal(t, "p1", got[0].ProjectID)
	require.NotEmpty(t, got[0].Timestamp)
}
