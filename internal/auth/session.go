package auth

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// SessionStore tracks live staff sessions so a logout revokes the token
// before it expires. Implementations are safe for concurrent use.
type SessionStore interface {
	Create(ctx context.Context, id string, ttl time.Duration) error
	Exists(ctx context.Context, id string) (bool, error)
	Revoke(ctx context.Context, id string) error
}

// RedisSessionStore keeps one key per session, expiring with the token.
type RedisSessionStore struct {
	client    *redis.Client
	namespace string
}

func NewRedisSessionStore(client *redis.Client, namespace string) *RedisSessionStore {
	return &RedisSessionStore{client: client, namespace: namespace}
}

func (s *RedisSessionStore) key(id string) string {
	return fmt.Sprintf("%s:session:%s", s.namespace, id)
}

func (s *RedisSessionStore) Create(ctx context.Context, id string, ttl time.Duration) error {
	return s.client.Set(ctx, s.key(id), "1", ttl).Err()
}

func (s *RedisSessionStore) Exists(ctx context.Context, id string) (bool, error) {
	n, err := s.client.Exists(ctx, s.key(id)).Result()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (s *RedisSessionStore) Revoke(ctx context.Context, id string) error {
	return s.client.Del(ctx, s.key(id)).Err()
}

// MemorySessionStore is used when no Redis URL is configured. Sessions do
// not survive a restart.
type MemorySessionStore struct {
	mu       sync.Mutex
	sessions map[string]time.Time
	now      func() time.Time
}

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{
		sessions: make(map[string]time.Time),
		now:      time.Now,
	}
}

func (s *MemorySessionStore) Create(_ context.Context, id string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for sid, expires := range s.sessions {
		if !now.Before(expires) {
			delete(s.sessions, sid)
		}
	}
	s.sessions[id] = now.Add(ttl)
	return nil
}

func (s *MemorySessionStore) Exists(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	expires, ok := s.sessions[id]
	if !ok {
		return false, nil
	}
	if !s.now().Before(expires) {
		delete(s.sessions, id)
		return false, nil
	}
	return true, nil
}

func (s *MemorySessionStore) Revoke(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, id)
	return nil
}
