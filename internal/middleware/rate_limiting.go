package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/2beens/fitlife/internal/auth"
	"github.com/2beens/fitlife/internal/telemetry/metrics"
	"github.com/2beens/fitlife/pkg"

	"github.com/go-redis/redis_rate/v9"
	log "github.com/sirupsen/logrus"
)

type RequestRateLimiter interface {
	Allow(ctx context.Context, key string, limit redis_rate.Limit) (*redis_rate.Result, error)
}

// RateLimit allows allowedPerMin requests per minute for each user of the
// router. Requests without a user are keyed by client ip.
func RateLimit(
	rateLimiter RequestRateLimiter,
	metricsManager *metrics.Manager,
	routerName string,
	allowedPerMin int,
) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			res, err := rateLimiter.Allow(
				r.Context(),
				rateLimitKey(routerName, r),
				redis_rate.PerMinute(allowedPerMin),
			)
			if err != nil {
				log.Errorf("rate limit %s: %s", routerName, err)
				http.Error(w, "rate limit internal error", http.StatusInternalServerError)
				return
			}

			if res.Allowed > 0 {
				next.ServeHTTP(w, r)
				return
			}

			if metricsManager != nil {
				metricsManager.CounterRateLimitedRequests.Inc()
			}
			w.Header().Set("Retry-After", strconv.Itoa(int(res.RetryAfter.Seconds())+1))
			http.Error(
				w,
				fmt.Sprintf("retry after %.0f seconds", res.RetryAfter.Seconds()),
				http.StatusTooManyRequests,
			)
		})
	}
}

func rateLimitKey(routerName string, r *http.Request) string {
	if userID, ok := auth.UserIDFromContext(r.Context()); ok {
		return routerName + ":user:" + userID
	}
	ip, err := pkg.ReadUserIP(r)
	if err != nil || ip == "" {
		return routerName + ":anonymous"
	}
	return routerName + ":ip:" + ip
}
