package memory

import (
	"context"

	"github.com/patrickmn/go-cache"

	"github.com/Rrens/studymate/internal/domain"
)

// Store keeps values in process memory; nothing survives a restart.
type Store struct {
	cache *cache.Cache
}

// NewStore creates an empty in-memory store
func NewStore() *Store {
	return &Store{cache: cache.New(cache.NoExpiration, 0)}
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	v, ok := s.cache.Get(key)
	if !ok {
		return nil, domain.ErrKeyNotFound
	}
	stored := v.([]byte)
	out := make([]byte, len(stored))
	copy(out, stored)
	return out, nil
}

func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	stored := make([]byte, len(value))
	copy(stored, value)
	s.cache.Set(key, stored, cache.NoExpiration)
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return nil
}

func (s *Store) Close() error {
	s.cache.Flush()
	return nil
}
