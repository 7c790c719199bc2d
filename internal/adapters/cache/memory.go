package cache

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"conferencecentral/internal/domain"
)

const cleanupInterval = 30 * time.Minute

// memoryCache keeps entries in process memory. Entries never expire; they are
// overwritten or cleared by the announcement service.
type memoryCache struct {
	cache *gocache.Cache
}

// NewMemoryCache returns an in-process Cache.
func NewMemoryCache() domain.Cache {
	return &memoryCache{cache: gocache.New(gocache.NoExpiration, cleanupInterval)}
}

func (c *memoryCache) Get(_ context.Context, key string) (string, bool, error) {
	value, found := c.cache.Get(key)
	if !found {
		return "", false, nil
	}
	s, ok := value.(string)
	if !ok {
		return "", false, nil
	}
	return s, true, nil
}

func (c *memoryCache) Set(_ context.Context, key, value string) error {
	c.cache.Set(key, value, gocache.NoExpiration)
	return nil
}

func (c *memoryCache) Clear(_ context.Context, key string) error {
	c.cache.Delete(key)
	return nil
}
