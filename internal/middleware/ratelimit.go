package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
)

// RateLimit returns middleware that limits requests per client IP to
// maxRequests within the given window, using a fixed-window counter in
// Redis so limits hold across replicas. Returns 429 when exceeded.
//
// Redis being down must not take the API with it: counter errors are
// logged and the request is allowed through.
func RateLimit(rdb *redis.Client, maxRequests int, window time.Duration) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			key := fmt.Sprintf("ratelimit:%s:%d", c.RealIP(), time.Now().Unix()/int64(window.Seconds()))

			count, err := rdb.Incr(ctx, key).Result()
			if err != nil {
				slog.Warn("rate limit counter unavailable", slog.Any("error", err))
				return next(c)
			}
			if count == 1 {
				// First hit in this window owns the expiry.
				if err := rdb.Expire(ctx, key, window).Err(); err != nil {
					slog.Warn("rate limit expire failed", slog.Any("error", err))
				}
			}

			if count > int64(maxRequests) {
				return c.JSON(http.StatusTooManyRequests, map[string]string{
					"type":    "rate_limited",
					"message": "Rate limit exceeded. Please try again later.",
				})
			}
			return next(c)
		}
	}
}
