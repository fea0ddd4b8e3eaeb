package projectrel

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/orgmesh/orgkb/pkg/apperror"
	"github.com/orgmesh/orgkb/pkg/pagination"
)

// Handler handles HTTP requests for project relationship operations
type Handler struct {
	svc *Service
}

// NewHandler creates a new project relationship handler
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func pageParams(c echo.Context) pagination.Params {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	pageSize, _ := strconv.Atoi(c.QueryParam("page_size"))
	return pagination.Normalize(page, pageSize)
}

func bindProperties(c echo.Context) (map[string]any, error) {
	var props map[string]any
	if err := c.Bind(&props); err != nil {
		return nil, apperror.NewValidation("malformed property payload")
	}
	if props == nil {
		props = map[string]any{}
	}
	return props, nil
}

// AssignResource assigns a resource to a project
// POST /api/projects/:id/resources/:resourceId
func (h *Handler) AssignResource(c echo.Context) error {
	var req AssignResourceRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewValidation("malformed property payload")
	}

	rel, err := h.svc.AssignResource(c.Request().Context(), c.Param("id"), c.Param("resourceId"), req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, rel)
}

// UpdateResource merge-updates the resource assignment's properties
// PATCH /api/projects/:id/resources/:resourceId
func (h *Handler) UpdateResource(c echo.Context) error {
	props, err := bindProperties(c)
	if err != nil {
		return err
	}

	rel, err := h.svc.UpdateResourceRelationship(c.Request().Context(), c.Param("id"), c.Param("resourceId"), props)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, rel)
}

// UnassignResource removes a resource assignment
// DELETE /api/projects/:id/resources/:resourceId
func (h *Handler) UnassignResource(c echo.Context) error {
	removed, err := h.svc.UnassignResource(c.Request().Context(), c.Param("id"), c.Param("resourceId"))
	if err != nil {
		return err
	}
	if !removed {
		return apperror.ErrNotFound.WithMessage("Resource is not assigned to this project")
	}

	return c.NoContent(http.StatusNoContent)
}

// ListResources returns the project's assigned resources, paginated
// GET /api/projects/:id/resources?page=&page_size=
func (h *Handler) ListResources(c echo.Context) error {
	items, meta, err := h.svc.GetProjectResources(c.Request().Context(), c.Param("id"), pageParams(c))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, ListResponse{Items: items, Pagination: meta})
}

// ListResourceRelationships returns the resource join with edge properties
// GET /api/projects/:id/resources/relationships
func (h *Handler) ListResourceRelationships(c echo.Context) error {
	items, err := h.svc.GetProjectResourcesWithRelationships(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, JoinResponse{Items: items})
}

// AssignManager appoints an agent as a project manager
// POST /api/projects/:id/managers/:agentId
func (h *Handler) AssignManager(c echo.Context) error {
	var req AssignManagerRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewValidation("malformed property payload")
	}

	rel, err := h.svc.AssignManager(c.Request().Context(), c.Param("id"), c.Param("agentId"), req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, rel)
}

// UpdateManager merge-updates the manager edge's properties
// PATCH /api/projects/:id/managers/:agentId
func (h *Handler) UpdateManager(c echo.Context) error {
	props, err := bindProperties(c)
	if err != nil {
		return err
	}

	rel, err := h.svc.UpdateManagerRelationship(c.Request().Context(), c.Param("id"), c.Param("agentId"), props)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, rel)
}

// RemoveManager removes a project manager
// DELETE /api/projects/:id/managers/:agentId
func (h *Handler) RemoveManager(c echo.Context) error {
	removed, err := h.svc.RemoveManager(c.Request().Context(), c.Param("id"), c.Param("agentId"))
	if err != nil {
		return err
	}
	if !removed {
		return apperror.ErrNotFound.WithMessage("Agent does not manage this project")
	}

	return c.NoContent(http.StatusNoContent)
}

// ListManagers returns the project's managers, paginated
// GET /api/projects/:id/managers?page=&page_size=
func (h *Handler) ListManagers(c echo.Context) error {
	items, meta, err := h.svc.GetProjectManagers(c.Request().Context(), c.Param("id"), pageParams(c))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, ListResponse{Items: items, Pagination: meta})
}

// ListManagerRelationships returns the manager join with edge properties
// GET /api/projects/:id/managers/relationships
func (h *Handler) ListManagerRelationships(c echo.Context) error {
	items, err := h.svc.GetProjectManagersWithRelationships(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, JoinResponse{Items: items})
}

// AddSubproject links a child project under a parent
// POST /api/projects/:id/subprojects/:childId
func (h *Handler) AddSubproject(c echo.Context) error {
	rel, err := h.svc.AddSubproject(c.Request().Context(), c.Param("id"), c.Param("childId"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, rel)
}

// RemoveSubproject unlinks a child project from its parent
// DELETE /api/projects/:id/subprojects/:childId
func (h *Handler) RemoveSubproject(c echo.Context) error {
	removed, err := h.svc.RemoveSubproject(c.Request().Context(), c.Param("id"), c.Param("childId"))
	if err != nil {
		return err
	}
	if !removed {
		return apperror.ErrNotFound.WithMessage("Project is not a subproject of this parent")
	}

	return c.NoContent(http.StatusNoContent)
}

// ListSubprojects returns the direct children of a project, paginated
// GET /api/projects/:id/subprojects?page=&page_size=
func (h *Handler) ListSubprojects(c echo.Context) error {
	items, meta, err := h.svc.GetSubprojects(c.Request().Context(), c.Param("id"), pageParams(c))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, ListResponse{Items: items, Pagination: meta})
}

// GetParent returns the parent project of a child
// GET /api/projects/:id/parent
func (h *Handler) GetParent(c echo.Context) error {
	parent, err := h.svc.GetParent(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, parent)
}

// AddTask links a task to a project
// POST /api/projects/:id/tasks/:taskId
func (h *Handler) AddTask(c echo.Context) error {
	rel, err := h.svc.AddTask(c.Request().Context(), c.Param("id"), c.Param("taskId"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, rel)
}

// RemoveTask unlinks a task from a project
// DELETE /api/projects/:id/tasks/:taskId
func (h *Handler) RemoveTask(c echo.Context) error {
	removed, err := h.svc.RemoveTask(c.Request().Context(), c.Param("id"), c.Param("taskId"))
	if err != nil {
		return err
	}
	if !removed {
		return apperror.ErrNotFound.WithMessage("Task does not belong to this project")
	}

	return c.NoContent(http.StatusNoContent)
}

// ListTasks returns the tasks belonging to a project, paginated
// GET /api/projects/:id/tasks?page=&page_size=
func (h *Handler) ListTasks(c echo.Context) error {
	items, meta, err := h.svc.GetProjectTasks(c.Request().Context(), c.Param("id"), pageParams(c))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, ListResponse{Items: items, Pagination: meta})
}
