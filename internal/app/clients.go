package app

import (
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/graphledger-backend/internal/clients/redis"
	"github.com/yungbote/graphledger-backend/internal/data/cache"
	"github.com/yungbote/graphledger-backend/internal/observability"
	"github.com/yungbote/graphledger-backend/internal/pkg/logger"
)

type Clients struct {
	Redis        *goredis.Client
	VersionCache *cache.VersionCache
}

// wireClients connects Redis when configured and builds the version cache over it, or over
// an in-process store otherwise.
func wireClients(ctx context.Context, log *logger.Logger, cfg Config, metrics *observability.Metrics) (Clients, error) {
	log.Info("Wiring clients...")

	rdb, err := redis.NewClient(ctx, log, cfg.redisConfig())
	if err != nil {
		return Clients{}, fmt.Errorf("init redis: %w", err)
	}

	var store cache.Store
	if rdb != nil {
		store = cache.NewRedisStore(rdb, cfg.ServiceName)
	} else {
		log.Info("REDIS_ADDR not set, version cache is in-process")
		store = cache.NewMemoryStore(cfg.Cache.MemoryEntries)
	}

	return Clients{
		Redis:        rdb,
		VersionCache: cache.NewVersionCache(store, cfg.Cache.VersionTTL, log, metrics),
	}, nil
}

func (c *Clients) Close() {
	if c == nil {
		return
	}
	if c.Redis != nil {
		_ = c.Redis.Close()
	}
}
