package app

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/rayners/fvtt-seasons-and-stars-sub002/internal/apikeys"
	"github.com/rayners/fvtt-seasons-and-stars-sub002/internal/middleware"
	"github.com/rayners/fvtt-seasons-and-stars-sub002/internal/worlds"
)

// RegisterRoutes sets up all application routes. It registers public routes
// directly and delegates to each plugin's route registration function.
//
// This is the single place where all routes are aggregated. When a new
// plugin is added, its routes are registered here.
func (a *App) RegisterRoutes() {
	e := a.Echo

	// Health check endpoint for Docker health monitoring.
	e.GET("/healthz", func(c echo.Context) error {
		ctx := c.Request().Context()
		if err := a.DB.PingContext(ctx); err != nil {
			return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "db unavailable"})
		}
		if err := a.Redis.Ping(ctx).Err(); err != nil {
			return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "redis unavailable"})
		}
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	// Plugins.
	keyRepo := apikeys.NewKeyRepository(a.DB)
	keySvc := apikeys.NewKeyService(keyRepo)

	worldRepo := worlds.NewWorldRepository(a.DB)
	worldSvc := worlds.NewWorldService(worldRepo, a.Registry)

	// REST API for external clients (Foundry VTT, custom scripts).
	v1 := e.Group("/api/v1",
		apikeys.RequireAPIKey(keySvc, a.Config.API.AuthDisabled),
		middleware.RateLimit(a.Redis, a.Config.API.RateLimit, a.Config.API.RateWindow),
	)

	worlds.RegisterRoutes(v1, worlds.NewHandler(worldSvc, a.Registry))
	apikeys.RegisterRoutes(v1, apikeys.NewHandler(keySvc))
}
