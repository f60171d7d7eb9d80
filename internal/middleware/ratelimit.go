package middleware

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/marketing-hub/autowebinar/pkg/kvstore"
	"github.com/marketing-hub/autowebinar/pkg/response"
)

// RateLimit returns a fixed-window per-IP rate limiting middleware. The
// window is one minute; limit is the number of requests allowed per window.
// Counter storage failures allow the request through rather than blocking
// traffic on a degraded store.
func RateLimit(store kvstore.Store, name string, limit int, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := fmt.Sprintf("ratelimit:%s:%s", name, c.ClientIP())
		count, err := store.Incr(c.Request.Context(), key, 60)
		if err != nil {
			logger.Warn("rate limit store unavailable", zap.String("limiter", name), zap.Error(err))
			c.Next()
			return
		}
		if count > int64(limit) {
			response.TooManyRequests(c, "too many requests, please try again later")
			c.Abort()
			return
		}
		c.Next()
	}
}
