package apikeys

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/rayners/fvtt-seasons-and-stars-sub002/internal/apperror"
)

// Handler serves API key management endpoints.
type Handler struct {
	service KeyService
}

// NewHandler creates a new key management handler.
func NewHandler(service KeyService) *Handler {
	return &Handler{service: service}
}

// createKeyRequest is the POST /apikeys payload.
type createKeyRequest struct {
	Name string `json:"name"`
}

// CreateKey issues a new API key (POST /api/v1/apikeys). The response is
// the only time the plaintext key is visible.
func (h *Handler) CreateKey(c echo.Context) error {
	var req createKeyRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request body")
	}

	result, err := h.service.CreateKey(c.Request().Context(), CreateKeyInput{Name: req.Name})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, result)
}

// ListKeys lists all keys without hashes (GET /api/v1/apikeys).
func (h *Handler) ListKeys(c echo.Context) error {
	keys, err := h.service.ListKeys(c.Request().Context())
	if err != nil {
		return err
	}
	if keys == nil {
		keys = []APIKey{}
	}
	return c.JSON(http.StatusOK, map[string]any{
		"data":  keys,
		"total": len(keys),
	})
}

// DisableKey deactivates a key (PUT /api/v1/apikeys/:keyID/disable).
func (h *Handler) DisableKey(c echo.Context) error {
	if err := h.service.DisableKey(c.Request().Context(), c.Param("keyID")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// EnableKey reactivates a key (PUT /api/v1/apikeys/:keyID/enable).
func (h *Handler) EnableKey(c echo.Context) error {
	if err := h.service.EnableKey(c.Request().Context(), c.Param("keyID")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// DeleteKey revokes a key permanently (DELETE /api/v1/apikeys/:keyID).
func (h *Handler) DeleteKey(c echo.Context) error {
	if err := h.service.DeleteKey(c.Request().Context(), c.Param("keyID")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// RegisterRoutes adds key management endpoints to the versioned API group.
func RegisterRoutes(g *echo.Group, h *Handler) {
	g.POST("/apikeys", h.CreateKey)
	g.GET("/apikeys", h.ListKeys)
	g.PUT("/apikeys/:keyID/disable", h.DisableKey)
	g.PUT("/apikeys/:keyID/enable", h.EnableKey)
	g.DELETE("/apikeys/:keyID", h.DeleteKey)
}
