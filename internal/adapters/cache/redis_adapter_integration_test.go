//go:build integration

package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/cityguide/backend/internal/domain/providers"
	redisclient "github.com/cityguide/backend/internal/infrastructure/clients/redis"
	"github.com/cityguide/backend/pkg/config"
)

func TestRedisAdapter_Integration(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "6379")
	require.NoError(t, err)

	client, err := redisclient.NewClient(ctx, &config.RedisConfig{Host: host, Port: port.Int()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	adapter := NewRedisAdapter(client)
	key := "geo:v1:geocode:test"

	_, err = adapter.Get(ctx, key)
	assert.ErrorIs(t, err, providers.ErrCacheMiss)

	require.NoError(t, adapter.Set(ctx, key, []byte(`{"latitude":47.2,"longitude":39.7}`), 60))
	value, err := adapter.Get(ctx, key)
	require.NoError(t, err)
	assert.JSONEq(t, `{"latitude":47.2,"longitude":39.7}`, string(value))

	require.NoError(t, adapter.Delete(ctx, key))
	_, err = adapter.Get(ctx, key)
	assert.ErrorIs(t, err, providers.ErrCacheMiss)
}
