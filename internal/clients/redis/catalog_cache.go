package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/lawcomply/lawcomply-backend/internal/platform/logger"
)

const catalogKeyPrefix = "lawcomply:catalog:"

// CatalogCache keeps resolved control catalogs keyed by regulation code.
type CatalogCache struct {
	log *logger.Logger
	rdb goredis.UniversalClient
	ttl time.Duration
}

func NewCatalogCache(log *logger.Logger, rdb goredis.UniversalClient, ttl time.Duration) *CatalogCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &CatalogCache{log: log.With("service", "RedisCatalogCache"), rdb: rdb, ttl: ttl}
}

func catalogKey(code string) string { return catalogKeyPrefix + code }

func (c *CatalogCache) Get(ctx context.Context, code string) ([]byte, bool, error) {
	if c == nil || c.rdb == nil {
		return nil, false, fmt.Errorf("redis catalog cache not initialized")
	}
	b, err := c.rdb.Get(ctx, catalogKey(code)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

func (c *CatalogCache) Set(ctx context.Context, code string, payload []byte) error {
	if c == nil || c.rdb == nil {
		return fmt.Errorf("redis catalog cache not initialized")
	}
	return c.rdb.Set(ctx, catalogKey(code), payload, c.ttl).Err()
}

func (c *CatalogCache) Delete(ctx context.Context, code string) error {
	if c == nil || c.rdb == nil {
		return fmt.Errorf("redis catalog cache not initialized")
	}
	return c.rdb.Del(ctx, catalogKey(code)).Err()
}
