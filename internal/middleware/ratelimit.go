package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
)

// RateLimit counts requests per path and client in a fixed Redis window.
// It fails open when Redis is unavailable.
func RateLimit(rdb *redis.Client, limit int, window time.Duration) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			client := c.RealIP()
			if id := GetUserID(c); id != uuid.Nil {
				client = id.String()
			}
			key := fmt.Sprintf("rl:%s:%s", c.Path(), client)

			ctx := c.Request().Context()
			// INCR and the first-hit TTL go out in one MULTI so a key never
			// survives without an expiry.
			var incr *redis.IntCmd
			_, err := rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				incr = pipe.Incr(ctx, key)
				pipe.ExpireNX(ctx, key, window)
				return nil
			})
			if err != nil {
				return next(c) // fail open
			}

			if incr.Val() > int64(limit) {
				return echo.NewHTTPError(http.StatusTooManyRequests, "rate limit exceeded")
			}

			return next(c)
		}
	}
}
