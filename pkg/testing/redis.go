package testing

import (
	"context"
	"net"
	"os"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/require"
)

// GetRedisClientAndCtx connects to a real redis instance, used by the tests
// guarded with the integration_test build tag.
func GetRedisClientAndCtx(t *testing.T) (context.Context, *redis.Client) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	t.Cleanup(cancel)

	redisHost := os.Getenv("FITLIFE_REDIS_HOST")
	if redisHost == "" {
		redisHost = "localhost"
	}
	t.Logf("using redis host: [%s]", redisHost)

	redisPort := os.Getenv("FITLIFE_REDIS_PORT")
	if redisPort == "" {
		redisPort = "6379"
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     net.JoinHostPort(redisHost, redisPort),
		Password: os.Getenv("FITLIFE_REDIS_PASS"),
		DB:       0, // use default DB
	})
	t.Cleanup(func() {
		_ = rdb.Close()
	})

	pingRes, err := rdb.Ping(ctx).Result()
	require.NoError(t, err)
	t.Logf("redis ping res: %s", pingRes)

	return ctx, rdb
}
