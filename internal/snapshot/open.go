package snapshot

import (
	"fmt"

	"github.com/2beens/fitlife/internal/config"

	"github.com/go-redis/redis/v8"
	log "github.com/sirupsen/logrus"
)

// Open creates the store selected by cfg. The returned close func is never nil.
func Open(cfg *config.Config, redisClient *redis.Client) (Store, func() error, error) {
	noop := func() error { return nil }

	switch cfg.SnapshotStore {
	case config.SnapshotStoreMemory:
		log.Debugln("using in-memory snapshot store")
		return NewMemoryStore(), noop, nil
	case config.SnapshotStoreFreecache:
		log.Debugf("using freecache snapshot store, size: %d MB", cfg.SnapshotCacheSizeMB)
		return NewFreecacheStore(cfg.SnapshotCacheSizeMB), noop, nil
	case config.SnapshotStoreRedis:
		if redisClient == nil {
			return nil, noop, fmt.Errorf("redis snapshot store needs a redis client")
		}
		log.Debugln("using redis snapshot store")
		return NewRedisStore(redisClient), noop, nil
	case config.SnapshotStoreSQLite:
		store, err := OpenSQLiteStore(cfg.SnapshotSQLitePath)
		if err != nil {
			return nil, noop, err
		}
		log.Debugf("using sqlite snapshot store: %s", cfg.SnapshotSQLitePath)
		return store, store.Close, nil
	default:
		return nil, noop, fmt.Errorf("unknown snapshot store: %q", cfg.SnapshotStore)
	}
}
