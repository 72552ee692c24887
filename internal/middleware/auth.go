package middleware

import (
	"net/http"
	"strings"

	"github.com/fill11/match-service/internal/auth"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const CtxUserID = "user_id"

// Auth requires a bearer JWT and stores the caller's user id in the context.
func Auth(secret string, log *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			tokenStr := strings.TrimPrefix(authHeader, "Bearer ")
			if tokenStr == authHeader {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization format")
			}

			claims, err := auth.ParseJWT(secret, tokenStr)
			if err != nil {
				log.Debug("jwt parse error", zap.Error(err))
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token")
			}

			c.Set(CtxUserID, claims.UserID)
			return next(c)
		}
	}
}

// GetUserID returns uuid.Nil when the request was not authenticated.
func GetUserID(c echo.Context) uuid.UUID {
	id, _ := c.Get(CtxUserID).(uuid.UUID)
	return id
}
