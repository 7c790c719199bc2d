package cache

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"conferencecentral/internal/domain"
)

// Config holds configuration for creating a cache.
type Config struct {
	Provider  string
	RedisAddr string
}

// New creates a cache from config. Provider "redis" connects to RedisAddr and
// fails when the server does not answer a ping; "memory" or unknown uses an
// in-process cache. The returned close func releases the backend.
func New(ctx context.Context, config Config, logger *slog.Logger) (domain.Cache, func() error, error) {
	switch strings.ToLower(config.Provider) {
	case "redis":
		if config.RedisAddr == "" {
			return nil, nil, fmt.Errorf("missing redis address")
		}
		rdb := goredis.NewClient(&goredis.Options{
			Addr:        config.RedisAddr,
			DialTimeout: 5 * time.Second,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			_ = rdb.Close()
			return nil, nil, fmt.Errorf("redis ping: %w", err)
		}
		return NewRedisCache(rdb), rdb.Close, nil
	case "memory", "":
		return NewMemoryCache(), func() error { return nil }, nil
	default:
		logger.Warn("unknown cache provider, using memory", "provider", config.Provider)
		return NewMemoryCache(), func() error { return nil }, nil
	}
}
