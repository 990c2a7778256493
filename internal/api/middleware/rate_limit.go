package middleware

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/danchok124-del/shift-manager-backend/pkg/redis"
	"github.com/danchok124-del/shift-manager-backend/pkg/response"
)

// RateLimit enforces a sliding-window limit per client IP and route. With a
// nil or failing redis the middleware fails open.
func RateLimit(rdb *redis.Client, limit int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if rdb == nil {
			c.Next()
			return
		}

		key := fmt.Sprintf("rate_limit:%s:%s", c.ClientIP(), c.FullPath())
		allowed, err := rdb.CheckRateLimit(c.Request.Context(), key, limit, window)
		if err != nil {
			c.Next()
			return
		}

		if !allowed {
			response.TooManyRequests(c, "Too many requests, please try again later")
			c.Abort()
			return
		}

		c.Next()
	}
}
