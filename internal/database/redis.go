package database

import (
	"context"
	"fmt"

	"github.com/rareminds/testportal/internal/config"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// queueConsumers is the number of workers that hold a connection in BLPOP.
const queueConsumers = 2

// NewRedisClient connects to Redis, which carries login sessions, the
// active-test markers, the question cache and the persistence queues.
func NewRedisClient(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*redis.Client, error) {
	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	opt.ClientName = "testportal"
	// Blocked queue consumers must not starve request traffic.
	if opt.PoolSize == 0 {
		opt.PoolSize = 10 + queueConsumers
	}
	opt.MinIdleConns = queueConsumers

	rdb := redis.NewClient(opt)
	err = withRetry(ctx, log, "redis", func(ctx context.Context) error {
		if err := rdb.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("ping redis: %w", err)
		}
		return nil
	})
	if err != nil {
		_ = rdb.Close()
		return nil, err
	}

	log.Info().
		Str("addr", opt.Addr).
		Int("db", opt.DB).
		Int("pool_size", opt.PoolSize).
		Msg("Redis connected")

	return rdb, nil
}
