package relationships

import (
	"github.com/labstack/echo/v4"

	"github.com/orgmesh/orgkb/pkg/auth"
)

// RegisterRoutes registers relationship query routes
func RegisterRoutes(e *echo.Echo, h *Handler, authMiddleware *auth.Middleware) {
	g := e.Group("/api")
	g.Use(authMiddleware.RequireAuth())

	g.GET("/relationships", h.List)
	g.GET("/entities/:id/neighbors", h.Neighbors)
}
