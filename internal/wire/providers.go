package wire

import (
	"context"

	"app-builder-ai-api/internal/config"
	"app-builder-ai-api/internal/domain/repository"
	"app-builder-ai-api/internal/infrastructure/persistence/memory"
	"app-builder-ai-api/internal/infrastructure/persistence/redis"
	"app-builder-ai-api/internal/interfaces/http/handler"
	"app-builder-ai-api/internal/interfaces/http/middleware"
	"app-builder-ai-api/internal/workflow/prompt"
	"app-builder-ai-api/pkg/logger"
)

// ProvideRedisClientOptional Redis 不可达时不阻塞启动
func ProvideRedisClientOptional(ctx context.Context, cfg *config.Config) (*redis.Client, func(), error) {
	if !cfg.Cache.Redis.Enabled {
		return nil, func() {}, nil
	}
	client, err := redis.NewClient(&cfg.Cache.Redis)
	if err != nil {
		logger.Warn(ctx, "redis not available, rate limiting and redis snapshots disabled", "error", err.Error())
		return nil, func() {}, nil
	}
	cleanup := func() {
		_ = client.Close()
	}
	return client, cleanup, nil
}

// ProvideRateLimiter 无 Redis 时返回 nil，中间件直接放行
func ProvideRateLimiter(client *redis.Client) middleware.RateLimiter {
	if client == nil {
		return nil
	}
	return redis.NewRateLimiter(client)
}

func ProvideHealthChecker(client *redis.Client) handler.HealthChecker {
	if client == nil {
		return nil
	}
	return client
}

// ProvideBuildSnapshotStore 按 build.snapshot_store 选择快照存储；none 返回 nil
func ProvideBuildSnapshotStore(ctx context.Context, cfg *config.Config, client *redis.Client) repository.BuildSnapshotRepository {
	ttl := cfg.Build.SnapshotTTL
	switch cfg.Build.SnapshotStore {
	case config.SnapshotStoreNone:
		return nil
	case config.SnapshotStoreRedis:
		if client != nil {
			return redis.NewBuildSnapshotStore(client, ttl)
		}
		logger.Warn(ctx, "redis snapshot store requested but redis unavailable, falling back to memory")
		return memory.NewBuildSnapshotStore(ttl)
	default:
		return memory.NewBuildSnapshotStore(ttl)
	}
}

func ProvideComposer() *prompt.Composer {
	return prompt.NewComposer(nil)
}

func ProvideHealthHandler(cfg *config.Config, checker handler.HealthChecker) *handler.HealthHandler {
	return handler.NewHealthHandler(cfg.App.Version, checker)
}
