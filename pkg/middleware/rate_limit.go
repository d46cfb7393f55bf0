package middleware

import (
	"net/http"

	"bitwise74/codedrop/pkg/ratelimit"

	"github.com/gin-gonic/gin"
)

// RateLimiterMiddleware limits requests per client IP
func RateLimiterMiddleware(cfg ratelimit.Config) gin.HandlerFunc {
	limiter := ratelimit.New[string](cfg)

	return func(c *gin.Context) {
		if !limiter.Allow(c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":     "Too many requests",
				"requestID": c.GetString("requestID"),
			})
			return
		}

		c.Next()
	}
}
