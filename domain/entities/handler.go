package entities

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/orgmesh/orgkb/pkg/apperror"
	"github.com/orgmesh/orgkb/pkg/pagination"
)

// Handler handles HTTP requests for entities
type Handler struct {
	svc *Service
}

// NewHandler creates a new entity handler
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// ListResponse is the envelope for paginated entity lists
type ListResponse struct {
	Items      []Entity            `json:"items"`
	Pagination pagination.Metadata `json:"pagination"`
}

// pageParams reads page/page_size query parameters with defaults.
func pageParams(c echo.Context) pagination.Params {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	pageSize, _ := strconv.Atoi(c.QueryParam("page_size"))
	return pagination.Normalize(page, pageSize)
}

// Create creates a new entity
// POST /api/entities
func (h *Handler) Create(c echo.Context) error {
	var req CreateEntityRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request body")
	}

	entity, err := h.svc.Create(c.Request().Context(), req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, entity)
}

// List returns a paginated list of entities, optionally filtered by kind
// GET /api/entities?kind=&page=&page_size=
func (h *Handler) List(c echo.Context) error {
	items, meta, err := h.svc.List(c.Request().Context(), c.QueryParam("kind"), pageParams(c))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, ListResponse{Items: items, Pagination: meta})
}

// Get returns a single entity by ID
// GET /api/entities/:id
func (h *Handler) Get(c echo.Context) error {
	entity, err := h.svc.GetByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, entity)
}

// Update merges attributes into an entity
// PATCH /api/entities/:id
func (h *Handler) Update(c echo.Context) error {
	var req UpdateEntityRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request body")
	}

	entity, err := h.svc.Update(c.Request().Context(), c.Param("id"), req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, entity)
}

// Delete removes an entity and cascades its relationships
// DELETE /api/entities/:id
func (h *Handler) Delete(c echo.Context) error {
	result, err := h.svc.Delete(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, result)
}
