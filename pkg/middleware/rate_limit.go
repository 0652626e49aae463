package middleware

import (
	"fmt"
	"net/http"

	"ytfetch/internal/model"
	"ytfetch/internal/service"

	"github.com/gin-gonic/gin"
)

// RateLimitMiddleware creates a middleware for rate limiting
func RateLimitMiddleware(rateLimitService *service.RateLimitService, requestsPerMinute int) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rateLimitService.Allow(c.ClientIP()) {
			c.Header("X-RateLimit-Limit", fmt.Sprintf("%d", requestsPerMinute))
			c.JSON(http.StatusTooManyRequests, model.ErrorResponse{
				Error:   "rate_limit_exceeded",
				Message: "Too many requests. Please try again later.",
				Code:    http.StatusTooManyRequests,
			})
			c.Abort()
			return
		}

		c.Header("X-RateLimit-Limit", fmt.Sprintf("%d", requestsPerMinute))
		c.Next()
	}
}

// StatsMiddleware counts every API request against its route.
func StatsMiddleware(statsService *service.StatsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		statsService.RecordRequest(c.FullPath())
		c.Next()
	}
}
