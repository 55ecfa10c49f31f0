package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenIssuer(t *testing.T) {
	issuer, err := NewTokenIssuer("test-secret", time.Hour)
	require.NoError(t, err)

	t.Run("RoundTrip", func(t *testing.T) {
		token, sessionID, err := issuer.Issue()
		require.NoError(t, err)
		assert.NotEmpty(t, sessionID)

		claims, err := issuer.Parse(token)
		require.NoError(t, err)
		assert.Equal(t, sessionID, claims.SessionID())
		assert.Equal(t, staffRole, claims.Role)
	})

	t.Run("Expired", func(t *testing.T) {
		token, _, err := issuer.Issue()
		require.NoError(t, err)

		later, _ := NewTokenIssuer("test-secret", time.Hour)
		later.now = func() time.Time { return time.Now().Add(2 * time.Hour) }

		_, err = later.Parse(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("WrongSecret", func(t *testing.T) {
		other, _ := NewTokenIssuer("other-secret", time.Hour)
		token, _, err := other.Issue()
		require.NoError(t, err)

		_, err = issuer.Parse(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("UnsignedAlgorithm", func(t *testing.T) {
		token, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
			Role: staffRole,
			RegisteredClaims: jwt.RegisteredClaims{
				Issuer:    tokenIssuer,
				ID:        "forged",
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		}).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = issuer.Parse(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("Garbage", func(t *testing.T) {
		_, err := issuer.Parse("not-a-token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestNewTokenIssuer_Rejects(t *testing.T) {
	_, err := NewTokenIssuer("", time.Hour)
	assert.Error(t, err)

	_, err = NewTokenIssuer("secret", 0)
	assert.Error(t, err)
}

func TestMemorySessionStore_Expiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, time.September, 1, 10, 0, 0, 0, time.UTC)
	store := NewMemorySessionStore()
	store.now = func() time.Time { return now }

	require.NoError(t, store.Create(ctx, "s1", time.Minute))

	ok, err := store.Exists(ctx, "s1")
	require.NoError(t, err)
	assert.True(t, ok)

	now = now.Add(time.Minute)
	ok, err = store.Exists(ctx, "s1")
	require.NoError(t, err)
	assert.False(t, ok)
}
