// Package ratelimit throttles credential endpoints with a Redis-backed
// fixed window. It is optional infrastructure: the service runs without it
// when no Redis address is configured.
package ratelimit

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"

	"github.com/gx-tools/task-tracker/internal/api"
	"github.com/gx-tools/task-tracker/internal/logger"
)

type Limiter struct {
	client *goredis.Client
	limit  int
	window time.Duration
}

// New connects to Redis and verifies it is reachable before the limiter is
// put in front of any endpoint.
func New(addr, password string, limit int, window time.Duration) (*Limiter, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &Limiter{client: client, limit: limit, window: window}, nil
}

func (l *Limiter) Close() error {
	return l.client.Close()
}

// Middleware counts attempts per client IP and route within the window and
// rejects with 429 once over the limit. Redis failures fail open: losing the
// throttle must not take login down with it.
func (l *Limiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := "ratelimit:" + c.FullPath() + ":" + c.ClientIP()

		n, err := l.client.Incr(c.Request.Context(), key).Result()
		if err != nil {
			logger.Warn("rate limiter unavailable", map[string]any{
				"error": err.Error(),
			})
			c.Next()
			return
		}
		if n == 1 {
			l.client.Expire(c.Request.Context(), key, l.window)
		}

		if n > int64(l.limit) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, api.Response{
				Success: false,
				Message: "Too many attempts, try again later",
			})
			return
		}
		c.Next()
	}
}
