package testredis

import (
	"context"
	"sync"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
)

var (
	sharedContainer *RedisContainer
	sharedOnce      sync.Once
	sharedMu        sync.Mutex
)

type RedisContainer struct {
	Container *tcredis.RedisContainer
	Client    *redis.Client
	URL       string
}

// SetupSharedRedis starts one Redis server reused by every test of the
// package until Cleanup is called. Tests sharing it cannot run in parallel.
func SetupSharedRedis(t *testing.T) *RedisContainer {
	t.Helper()

	sharedMu.Lock()
	defer sharedMu.Unlock()

	sharedOnce.Do(func() {
		ctx := context.Background()

		container, err := tcredis.Run(ctx, "redis:7-alpine")
		require.NoError(t, err)

		url, err := container.ConnectionString(ctx)
		require.NoError(t, err)

		opts, err := redis.ParseURL(url)
		require.NoError(t, err)

		client := redis.NewClient(opts)
		require.NoError(t, client.Ping(ctx).Err())

		sharedContainer = &RedisContainer{
			Container: container,
			Client:    client,
			URL:       url,
		}
	})

	return sharedContainer
}

func (rc *RedisContainer) Cleanup(t *testing.T) {
	t.Helper()
	ctx := context.Background()

	sharedMu.Lock()
	defer sharedMu.Unlock()

	if rc.Client != nil {
		rc.Client.Close()
	}

	if rc.Container != nil {
		if err := rc.Container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	}

	sharedContainer = nil
	sharedOnce = sync.Once{}
}

// Flush removes every key so subtests start from an empty store.
func (rc *RedisContainer) Flush(t *testing.T) {
	t.Helper()
	require.NoError(t, rc.Client.FlushAll(context.Background()).Err())
}
