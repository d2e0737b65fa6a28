package session

import (
	"context"
	"strings"

	"store_assistant/internal/config"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func Module() fx.Option {
	return fx.Module(
		"session",
		fx.Provide(
			NewSQLiteRepository,
			newCache,
			func(repo Repository, cache Cache, logger *zap.Logger) *Manager {
				return NewManager(repo, cache, logger)
			},
		),
	)
}

func newCache(lc fx.Lifecycle, cfg config.Config, logger *zap.Logger) Cache {
	addr := strings.TrimSpace(cfg.RedisAddr)
	if addr == "" {
		return NewMemoryCache()
	}

	client := redis.NewClient(&redis.Options{
		Addr:        addr,
		Password:    cfg.RedisPassword,
		DB:          cfg.RedisDB,
		DialTimeout: cfg.Timeout,
	})
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := client.Ping(ctx).Err(); err != nil {
				logger.Warn("redis session cache unreachable; cache reads will miss",
					zap.String("addr", addr),
					zap.Error(err),
				)
			}
			return nil
		},
		OnStop: func(_ context.Context) error {
			return client.Close()
		},
	})
	return NewRedisCache(client, cfg.RedisPrefix, logger)
}
