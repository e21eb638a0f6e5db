package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	types "github.com/yungbote/graphledger-backend/internal/domain"
	"github.com/yungbote/graphledger-backend/internal/observability"
	"github.com/yungbote/graphledger-backend/internal/pkg/logger"
)

// VersionLoader reads one version from the database. A nil version means it does not exist.
type VersionLoader func(ctx context.Context) (*types.Version, error)

// VersionCache is a read-through cache of immutable version rows keyed by (model, number).
// Rows never change once written, so entries are never invalidated, only expired.
type VersionCache struct {
	store   Store
	ttl     time.Duration
	group   singleflight.Group
	log     *logger.Logger
	metrics *observability.Metrics
}

func NewVersionCache(store Store, ttl time.Duration, log *logger.Logger, metrics *observability.Metrics) *VersionCache {
	if store == nil {
		store = NewMemoryStore(0)
	}
	if log == nil {
		log = logger.Nop()
	}
	return &VersionCache{
		store:   store,
		ttl:     ttl,
		log:     log.With("component", "VersionCache"),
		metrics: metrics,
	}
}

func versionKey(modelID uuid.UUID, number int) string {
	return fmt.Sprintf("version:%s:%d", modelID, number)
}

// Get returns the cached version or calls load once per key across concurrent callers.
// Store failures degrade to a direct load.
func (c *VersionCache) Get(ctx context.Context, modelID uuid.UUID, number int, load VersionLoader) (*types.Version, error) {
	key := versionKey(modelID, number)

	raw, ok, err := c.store.Get(ctx, key)
	if err != nil {
		c.log.Warn("version cache read failed", "key", key, "error", err)
	}
	if ok {
		var v types.Version
		if err := json.Unmarshal(raw, &v); err == nil {
			c.metrics.IncCacheLookup("hit")
			return &v, nil
		}
		c.log.Warn("version cache entry unreadable, reloading", "key", key)
	}
	c.metrics.IncCacheLookup("miss")

	res, err, _ := c.group.Do(key, func() (any, error) {
		v, err := load(ctx)
		if err != nil || v == nil {
			return v, err
		}
		if enc, err := json.Marshal(v); err == nil {
			if err := c.store.Set(ctx, key, enc, c.ttl); err != nil {
				c.log.Warn("version cache write failed", "key", key, "error", err)
			}
		}
		return v, nil
	})
	if err != nil {
		return nil, err
	}
	v, _ := res.(*types.Version)
	return v, nil
}
