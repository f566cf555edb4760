package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/ulule/limiter/v3"
	mgin "github.com/ulule/limiter/v3/drivers/middleware/gin"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	sredis "github.com/ulule/limiter/v3/drivers/store/redis"
)

const (
	rateLimitPrefix  = "ratelimit"
	RateLimitMessage = "Too many requests from this IP, please try again later."
)

// NewRateLimitStore keeps counters in redis when a client is given, so every
// instance shares the same window, and in process memory otherwise.
func NewRateLimitStore(client *redis.Client) (limiter.Store, error) {
	opts := limiter.StoreOptions{Prefix: rateLimitPrefix, MaxRetry: 3, CleanUpInterval: time.Minute}
	if client == nil {
		return memory.NewStoreWithOptions(opts), nil
	}
	return sredis.NewStoreWithOptions(client, opts)
}

// RateLimit allows max requests per client IP in each window.
func RateLimit(store limiter.Store, max int64, window time.Duration, log zerolog.Logger, metrics *Metrics) gin.HandlerFunc {
	instance := limiter.New(store, limiter.Rate{Period: window, Limit: max})

	return mgin.NewMiddleware(instance,
		mgin.WithLimitReachedHandler(func(c *gin.Context) {
			log.Warn().Str("ip", c.ClientIP()).Str("path", c.Request.URL.Path).Msg("rate limit exceeded")
			if metrics != nil {
				metrics.RateLimited.Inc()
			}
			c.String(http.StatusTooManyRequests, RateLimitMessage)
		}),
		mgin.WithErrorHandler(func(c *gin.Context, err error) {
			// Fail open; the driver aborts once this returns.
			log.Error().Err(err).Msg("rate limiter store failed")
			c.Next()
		}),
	)
}
