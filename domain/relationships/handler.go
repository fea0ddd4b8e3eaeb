package relationships

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Handler handles HTTP requests for relationship queries
type Handler struct {
	svc *Service
}

// NewHandler creates a new relationship handler
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// List returns edges matching endpoint/type filters
// GET /api/relationships?source_id=&target_id=&type=
func (h *Handler) List(c echo.Context) error {
	rels, err := h.svc.List(c.Request().Context(), ListFilter{
		SourceID: c.QueryParam("source_id"),
		TargetID: c.QueryParam("target_id"),
		Type:     c.QueryParam("type"),
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]any{"items": rels})
}

// Neighbors returns relationship-bearing neighbors of an entity
// GET /api/entities/:id/neighbors?direction=&type=
func (h *Handler) Neighbors(c echo.Context) error {
	neighbors, err := h.svc.Neighbors(
		c.Request().Context(),
		c.Param("id"),
		c.QueryParam("direction"),
		c.QueryParam("type"),
	)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]any{"items": neighbors})
}
