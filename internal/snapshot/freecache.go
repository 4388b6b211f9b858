package snapshot

import (
	"context"
	"errors"
	"fmt"

	"github.com/coocood/freecache"
)

var _ Store = (*FreecacheStore)(nil)

const megabyte = 1024 * 1024

// FreecacheStore keeps snapshots in a process-local cache. Entries are stored
// without expiry but may be evicted once the cache is full.
type FreecacheStore struct {
	cache *freecache.Cache
}

func NewFreecacheStore(cacheSizeMegabytes int) *FreecacheStore {
	return &FreecacheStore{
		cache: freecache.NewCache(cacheSizeMegabytes * megabyte),
	}
}

func (s *FreecacheStore) Get(_ context.Context, key string) (string, bool, error) {
	val, err := s.cache.Get([]byte(key))
	if errors.Is(err, freecache.ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("freecache get %s: %w", key, err)
	}
	return string(val), true, nil
}

func (s *FreecacheStore) Set(_ context.Context, key, value string) error {
	if err := s.cache.Set([]byte(key), []byte(value), 0); err != nil {
		return fmt.Errorf("freecache set %s: %w", key, err)
	}
	return nil
}

func (s *FreecacheStore) Remove(_ context.Context, key string) error {
	s.cache.Del([]byte(key))
	return nil
}
