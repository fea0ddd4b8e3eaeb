package projectrel

import (
	"github.com/labstack/echo/v4"

	"github.com/orgmesh/orgkb/pkg/auth"
)

// RegisterRoutes registers project relationship routes
func RegisterRoutes(e *echo.Echo, h *Handler, authMiddleware *auth.Middleware) {
	g := e.Group("/api/projects/:id")
	g.Use(authMiddleware.RequireAuth())

	// Resource assignments
	g.POST("/resources/:resourceId", h.AssignResource)
	g.PATCH("/resources/:resourceId", h.UpdateResource)
	g.DELETE("/resources/:resourceId", h.UnassignResource)
	g.GET("/resources", h.ListResources)
	g.GET("/resources/relationships", h.ListResourceRelationships)

	// Managers
	g.POST("/managers/:agentId", h.AssignManager)
	g.PATCH("/managers/:agentId", h.UpdateManager)
	g.DELETE("/managers/:agentId", h.RemoveManager)
	g.GET("/managers", h.ListManagers)
	g.GET("/managers/relationships", h.ListManagerRelationships)

	// Subprojects
	g.POST("/subprojects/:childId", h.AddSubproject)
	g.DELETE("/subprojects/:childId", h.RemoveSubproject)
	g.GET("/subprojects", h.ListSubprojects)
	g.GET("/parent", h.GetParent)

	// Tasks
	g.POST("/tasks/:taskId", h.AddTask)
	g.DELETE("/tasks/:taskId", h.RemoveTask)
	g.GET("/tasks", h.ListTasks)
}
