// middleware/rate_limiter.go

package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/bookhive/api/cache"
	logger "github.com/bookhive/api/logging"
)

// RateLimiter counts requests per client IP in a fixed window backed by the
// cache's atomic increment. The limiter is an optimization, not an
// authorization control: if the cache is unreachable the request is allowed.
func RateLimiter(cacheService *cache.Cache, limit int, per time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := "ratelimit:" + c.ClientIP()
		count, err := cacheService.Increment(c.Request.Context(), key, per)
		if err != nil {
			logger.Warn("Rate limiting unavailable, allowing request",
				zap.Error(err),
				zap.String("ip", c.ClientIP()))
			c.Next()
			return
		}

		// Set rate limit headers
		c.Header("X-RateLimit-Limit", strconv.Itoa(limit))
		c.Header("X-RateLimit-Duration", per.String())

		if count > int64(limit) {
			logger.Warn("Rate limit exceeded",
				zap.String("ip", c.ClientIP()),
				zap.Int64("count", count),
				zap.Int("limit", limit))
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "Rate limit exceeded"})
			c.Abort()
			return
		}

		c.Next()
	}
}
