package app

import (
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/lawcomply/lawcomply-backend/internal/clients/redis"
	"github.com/lawcomply/lawcomply-backend/internal/platform/logger"
)

type Clients struct {
	Redis        *goredis.Client
	CatalogCache *redis.CatalogCache
}

// wireClients connects optional backends. Redis is skipped when REDIS_ADDR
// is unset.
func wireClients(log *logger.Logger, cfg Config) (Clients, error) {
	log.Info("Wiring clients...")
	var out Clients
	if cfg.Redis.Addr != "" {
		rdb, err := redis.NewClient(log, cfg.Redis)
		if err != nil {
			return Clients{}, fmt.Errorf("init redis: %w", err)
		}
		out.Redis = rdb
		out.CatalogCache = redis.NewCatalogCache(log, rdb, cfg.CatalogCacheTTL)
	}
	return out, nil
}

func (c *Clients) Close() {
	if c == nil {
		return
	}
	if c.Redis != nil {
		_ = c.Redis.Close()
	}
}
