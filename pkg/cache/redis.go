package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/noah-isme/school-core/pkg/config"
)

const pingTimeout = 3 * time.Second

// NewRedis returns a Redis client that has answered a ping.
func NewRedis(cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", client.Options().Addr, err)
	}
	return client, nil
}

// Optional connects only when caching is enabled. An unreachable server is logged
// and yields a nil client so the service runs uncached.
func Optional(cfg *config.Config, logger *zap.Logger) *redis.Client {
	if !cfg.Cache.Enabled {
		return nil
	}
	client, err := NewRedis(cfg.Redis)
	if err != nil {
		logger.Warn("redis unavailable, caching disabled", zap.Error(err))
		return nil
	}
	return client
}
