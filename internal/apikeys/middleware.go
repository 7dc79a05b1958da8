package apikeys

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/rayners/fvtt-seasons-and-stars-sub002/internal/apperror"
)

// keyContextKey is the echo context key holding the authenticated key.
const keyContextKey = "api_key"

// GetAPIKey returns the authenticated API key from the request context,
// or nil when the request was not key-authenticated.
func GetAPIKey(c echo.Context) *APIKey {
	key, _ := c.Get(keyContextKey).(*APIKey)
	return key
}

// RequireAPIKey returns middleware that authenticates requests via
// "Authorization: Bearer <key>". When authDisabled is true (development
// only) the check is skipped entirely.
func RequireAPIKey(service KeyService, authDisabled bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if authDisabled {
				return next(c)
			}

			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return apperror.NewUnauthorized("api key required")
			}
			rawKey := strings.TrimPrefix(authHeader, "Bearer ")
			if rawKey == authHeader {
				return apperror.NewUnauthorized("invalid authorization format, use: Bearer <key>")
			}

			key, err := service.AuthenticateKey(c.Request().Context(), rawKey)
			if err != nil {
				return err
			}

			c.Set(keyContextKey, key)
			return next(c)
		}
	}
}
