package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/agrodex/agrodex-backend/internal/logger"
)

// RateLimitMiddleware throttles the public verification endpoint with a
// fixed per-IP window in redis. It fails open: when redis is down or not
// configured, requests pass through.
type RateLimitMiddleware struct {
	log       *logger.Logger
	rdb       *redis.Client
	perMinute int
}

func NewRateLimitMiddleware(log *logger.Logger, rdb *redis.Client, perMinute int) *RateLimitMiddleware {
	return &RateLimitMiddleware{
		log:       log.With("middleware", "RateLimitMiddleware"),
		rdb:       rdb,
		perMinute: perMinute,
	}
}

func (rl *RateLimitMiddleware) Limit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if rl.rdb == nil || rl.perMinute <= 0 {
			c.Next()
			return
		}

		key := fmt.Sprintf("ratelimit:verify:%s:%d", c.ClientIP(), time.Now().Unix()/60)
		count, err := rl.rdb.Incr(c.Request.Context(), key).Result()
		if err != nil {
			rl.log.Warn("rate limit check failed, allowing request", "error", err)
			c.Next()
			return
		}
		if count == 1 {
			rl.rdb.Expire(c.Request.Context(), key, time.Minute)
		}
		if count > int64(rl.perMinute) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "Too many verification requests, slow down",
			})
			return
		}
		c.Next()
	}
}
