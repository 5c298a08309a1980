package verifications

import (
	"context"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryStore keeps tokens in process memory. Tokens are lost on restart.
type MemoryStore struct {
	mu    sync.Mutex
	cache *gocache.Cache
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{cache: gocache.New(gocache.NoExpiration, 10*time.Minute)}
}

func (s *MemoryStore) Put(_ context.Context, token, userID string, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = gocache.NoExpiration
	}
	s.cache.Set(token, userID, ttl)
	return nil
}

func (s *MemoryStore) Take(_ context.Context, token string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.cache.Get(token)
	if !ok {
		return "", ErrTokenNotFound
	}
	s.cache.Delete(token)
	return v.(string), nil
}
