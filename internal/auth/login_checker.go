package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
)

const (
	DefaultTTL       = 24 * 7 * time.Hour
	SessionKeyPrefix = "fitlife-session||"
)

type LoginChecker struct {
	ttl         time.Duration
	redisClient *redis.Client
	nowFunc     func() time.Time
}

func NewLoginChecker(ttl time.Duration, redisClient *redis.Client) *LoginChecker {
	return &LoginChecker{
		ttl:         ttl,
		redisClient: redisClient,
		nowFunc:     time.Now,
	}
}

// UserID reads "<userID>|<createdAtUnix>" stored under the token's session key.
func (c *LoginChecker) UserID(ctx context.Context, token string) (string, error) {
	val, err := c.redisClient.Get(ctx, SessionKeyPrefix+token).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotLogged
	}
	if err != nil {
		return "", fmt.Errorf("get session: %w", err)
	}

	userID, createdAtUnixStr, found := strings.Cut(val, "|")
	if !found || userID == "" {
		return "", ErrTokenMalformed
	}

	createdAtUnix, err := strconv.ParseInt(createdAtUnixStr, 10, 64)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrTokenMalformed, err)
	}

	if c.nowFunc().Sub(time.Unix(createdAtUnix, 0)) > c.ttl {
		return "", ErrNotLogged
	}

	return userID, nil
}
