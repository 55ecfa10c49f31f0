package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/Merco74/ScoutPlateform/internal/auth"
	"github.com/Merco74/ScoutPlateform/testing/testredis"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exerciseSessionStore(t *testing.T, store auth.SessionStore) {
	t.Helper()
	ctx := context.Background()

	ok, err := store.Exists(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Create(ctx, "s1", time.Minute))
	ok, err = store.Exists(ctx, "s1")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, store.Revoke(ctx, "s1"))
	ok, err = store.Exists(ctx, "s1")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Revoke(ctx, "s1"))
}

func TestMemorySessionStore(t *testing.T) {
	exerciseSessionStore(t, auth.NewMemorySessionStore())
}

func TestRedisSessionStore_Shared(t *testing.T) {
	redisContainer := testredis.SetupSharedRedis(t)
	defer redisContainer.Cleanup(t)

	store := auth.NewRedisSessionStore(redisContainer.Client, "test")

	t.Run("Lifecycle", func(t *testing.T) {
		redisContainer.Flush(t)
		exerciseSessionStore(t, store)
	})

	t.Run("KeyExpiresWithSession", func(t *testing.T) {
		redisContainer.Flush(t)
		ctx := context.Background()

		require.NoError(t, store.Create(ctx, "s2", time.Minute))
		ttl, err := redisContainer.Client.TTL(ctx, "test:session:s2").Result()
		require.NoError(t, err)
		assert.Greater(t, ttl, 50*time.Second)
	})

	t.Run("LoginAgainstRedis", func(t *testing.T) {
		redisContainer.Flush(t)
		ctx := context.Background()
		service := newService(t, store)

		token, err := service.Login(ctx, password)
		require.NoError(t, err)

		_, err = service.Authenticate(ctx, token)
		require.NoError(t, err)

		require.NoError(t, service.Logout(ctx, token))
		_, err = service.Authenticate(ctx, token)
		assert.ErrorIs(t, err, auth.ErrSessionRevoked)
	})
}
