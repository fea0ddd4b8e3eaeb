package projectrel

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/orgmesh/orgkb/domain/entities"
	"github.com/orgmesh/orgkb/domain/relationships"
	"github.com/orgmesh/orgkb/pkg/apperror"
	"github.com/orgmesh/orgkb/pkg/logger"
	"github.com/orgmesh/orgkb/pkg/pagination"
	"github.com/orgmesh/orgkb/pkg/tracing"
)

// Default relationship property values
const (
	DefaultAssignmentStatus    = "active"
	DefaultManagerRole         = "project_manager"
	DefaultResponsibilityLevel = "primary"
)

// Service composes the entity and relationship stores into project-centric
// assignment operations. Each operation validates endpoints, applies its
// default-value policy, and delegates the edge write to the relationship
// store's merge-on-write upsert.
type Service struct {
	entities *entities.Service
	repo     *relationships.Repository
	log      *slog.Logger
}

// NewService creates a new project relationship service
func NewService(entitySvc *entities.Service, repo *relationships.Repository, log *slog.Logger) *Service {
	return &Service{
		entities: entitySvc,
		repo:     repo,
		log:      log.With(logger.Scope("projectrel.svc")),
	}
}

// validateAllocation checks that an allocation percentage value is numeric
// and within [0, 100].
func validateAllocation(v any) error {
	var pct float64
	switch n := v.(type) {
	case float64:
		pct = n
	case int:
		pct = float64(n)
	case int64:
		pct = float64(n)
	default:
		return apperror.NewValidation("allocation_percentage must be a number")
	}
	if pct < 0 || pct > 100 {
		return apperror.NewValidation(
			fmt.Sprintf("allocation_percentage must be between 0 and 100, got %v", pct))
	}
	return nil
}

// checkPair verifies both endpoints exist with the kinds the relationship
// type requires.
func (s *Service) checkPair(ctx context.Context, relType, sourceID, targetID string) error {
	sourceKind, targetKind, ok := relationships.Pairing(relType)
	if !ok {
		return apperror.NewValidation("unknown relationship type: " + relType)
	}
	if _, err := s.entities.GetOfKind(ctx, targetID, targetKind); err != nil {
		return err
	}
	if _, err := s.entities.GetOfKind(ctx, sourceID, sourceKind); err != nil {
		return err
	}
	return nil
}

// AssignResource creates or merge-updates the ASSIGNED_TO_PROJECT edge for
// a resource. assigned_at is always stamped server-side.
func (s *Service) AssignResource(ctx context.Context, projectID, resourceID string, req AssignResourceRequest) (*relationships.Relationship, error) {
	ctx, span := tracing.Start(ctx, "projectrel.assign_resource")
	defer span.End()

	if err := s.checkPair(ctx, relationships.TypeAssignedToProject, resourceID, projectID); err != nil {
		return nil, err
	}

	props := map[string]any{
		"assigned_at": time.Now().UTC().Format(time.RFC3339),
	}
	if req.AllocationPercentage != nil {
		if err := validateAllocation(*req.AllocationPercentage); err != nil {
			return nil, err
		}
		props["allocation_percentage"] = *req.AllocationPercentage
	}
	if req.AssignmentType != "" {
		props["assignment_type"] = req.AssignmentType
	}
	props["assignment_status"] = req.AssignmentStatus
	if req.AssignmentStatus == "" {
		props["assignment_status"] = DefaultAssignmentStatus
	}
	if req.ExpectedEndDate != nil {
		props["expected_end_date"] = *req.ExpectedEndDate
	}
	if req.Notes != nil {
		props["notes"] = *req.Notes
	}
	if req.AssignedBy != nil {
		props["assigned_by"] = *req.AssignedBy
	}

	rel, created, err := s.repo.Upsert(ctx, resourceID, projectID, relationships.TypeAssignedToProject, props)
	if err != nil {
		return nil, err
	}

	s.log.Info("resource assigned to project",
		slog.String("projectID", projectID),
		slog.String("resourceID", resourceID),
		slog.Bool("created", created),
	)
	return rel, nil
}

// UnassignResource removes the ASSIGNED_TO_PROJECT edge. Returns false
// when the project exists but no edge did.
func (s *Service) UnassignResource(ctx context.Context, projectID, resourceID string) (bool, error) {
	if _, err := s.entities.GetOfKind(ctx, projectID, entities.KindProject); err != nil {
		return false, err
	}
	return s.repo.Delete(ctx, resourceID, projectID, relationships.TypeAssignedToProject)
}

// GetProjectResources returns the resources assigned to a project, in
// assignment order, one page at a time.
func (s *Service) GetProjectResources(ctx context.Context, projectID string, p pagination.Params) ([]entities.Entity, pagination.Metadata, error) {
	return s.pagedSources(ctx, projectID, relationships.TypeAssignedToProject, p)
}

// GetProjectResourcesWithRelationships returns the resource join with full
// edge property visibility, unpaginated.
func (s *Service) GetProjectResourcesWithRelationships(ctx context.Context, projectID string) ([]EntityWithRelationship, error) {
	return s.joinedSources(ctx, projectID, relationships.TypeAssignedToProject)
}

// UpdateResourceRelationship merge-updates the edge's properties.
// Not-found when the edge does not exist (distinct from an empty update).
func (s *Service) UpdateResourceRelationship(ctx context.Context, projectID, resourceID string, props map[string]any) (*relationships.Relationship, error) {
	if _, err := s.entities.GetOfKind(ctx, projectID, entities.KindProject); err != nil {
		return nil, err
	}
	if v, ok := props["allocation_percentage"]; ok && v != nil {
		if err := validateAllocation(v); err != nil {
			return nil, err
		}
	}
	// assigned_at is server-owned
	delete(props, "assigned_at")

	rel, err := s.repo.MergeExisting(ctx, resourceID, projectID, relationships.TypeAssignedToProject, props)
	if err != nil {
		return nil, err
	}
	if rel == nil {
		return nil, apperror.ErrNotFound.WithMessage("Resource is not assigned to this project")
	}
	return rel, nil
}

// AssignManager creates or merge-updates the MANAGES_PROJECT edge for an
// agent. Multiple agents may manage one project simultaneously.
func (s *Service) AssignManager(ctx context.Context, projectID, agentID string, req AssignManagerRequest) (*relationships.Relationship, error) {
	ctx, span := tracing.Start(ctx, "projectrel.assign_manager")
	defer span.End()

	if err := s.checkPair(ctx, relationships.TypeManagesProject, agentID, projectID); err != nil {
		return nil, err
	}

	role := req.Role
	if role == "" {
		role = DefaultManagerRole
	}
	level := req.ResponsibilityLevel
	if level == "" {
		level = DefaultResponsibilityLevel
	}
	appointedAt := time.Now().UTC().Format(time.RFC3339)
	if req.AppointedAt != nil && *req.AppointedAt != "" {
		appointedAt = *req.AppointedAt
	}

	props := map[string]any{
		"role":                 role,
		"responsibility_level": level,
		"appointed_at":         appointedAt,
	}
	if req.Notes != nil {
		props["notes"] = *req.Notes
	}

	rel, created, err := s.repo.Upsert(ctx, agentID, projectID, relationships.TypeManagesProject, props)
	if err != nil {
		return nil, err
	}

	s.log.Info("manager assigned to project",
		slog.String("projectID", projectID),
		slog.String("agentID", agentID),
		slog.String("role", role),
		slog.Bool("created", created),
	)
	return rel, nil
}

// RemoveManager removes the MANAGES_PROJECT edge. Returns false when the
// project exists but no edge did.
func (s *Service) RemoveManager(ctx context.Context, projectID, agentID string) (bool, error) {
	if _, err := s.entities.GetOfKind(ctx, projectID, entities.KindProject); err != nil {
		return false, err
	}
	return s.repo.Delete(ctx, agentID, projectID, relationships.TypeManagesProject)
}

// GetProjectManagers returns the agents managing a project, paginated.
func (s *Service) GetProjectManagers(ctx context.Context, projectID string, p pagination.Params) ([]entities.Entity, pagination.Metadata, error) {
	return s.pagedSources(ctx, projectID, relationships.TypeManagesProject, p)
}

// GetProjectManagersWithRelationships returns the manager join with edge
// properties, unpaginated.
func (s *Service) GetProjectManagersWithRelationships(ctx context.Context, projectID string) ([]EntityWithRelationship, error) {
	return s.joinedSources(ctx, projectID, relationships.TypeManagesProject)
}

// UpdateManagerRelationship merge-updates the manager edge's properties.
func (s *Service) UpdateManagerRelationship(ctx context.Context, projectID, agentID string, props map[string]any) (*relationships.Relationship, error) {
	if _, err := s.entities.GetOfKind(ctx, projectID, entities.KindProject); err != nil {
		return nil, err
	}

	rel, err := s.repo.MergeExisting(ctx, agentID, projectID, relationships.TypeManagesProject, props)
	if err != nil {
		return nil, err
	}
	if rel == nil {
		return nil, apperror.ErrNotFound.WithMessage("Agent does not manage this project")
	}
	return rel, nil
}

// AddSubproject links child under parent with a single SUBPROJECT_OF edge
// (child -> parent). Both traversal directions derive from this one row.
func (s *Service) AddSubproject(ctx context.Context, parentID, childID string) (*relationships.Relationship, error) {
	ctx, span := tracing.Start(ctx, "projectrel.add_subproject")
	defer span.End()

	if parentID == childID {
		return nil, apperror.NewValidation("a project cannot be its own subproject")
	}
	if err := s.checkPair(ctx, relationships.TypeSubprojectOf, childID, parentID); err != nil {
		return nil, err
	}

	// Reject a direct cycle: parent already a subproject of child
	inverse, err := s.repo.Get(ctx, parentID, childID, relationships.TypeSubprojectOf)
	if err != nil {
		return nil, err
	}
	if inverse != nil {
		return nil, apperror.NewValidation("projects cannot be subprojects of each other")
	}

	// A child has at most one parent
	existing, err := s.repo.GetBySource(ctx, childID, relationships.TypeSubprojectOf)
	if err != nil {
		return nil, err
	}
	for _, e := range existing {
		if e.TargetID != parentID {
			return nil, apperror.NewValidation("project already has a parent")
		}
	}

	props := map[string]any{
		"linked_at": time.Now().UTC().Format(time.RFC3339),
	}
	rel, created, err := s.repo.Upsert(ctx, childID, parentID, relationships.TypeSubprojectOf, props)
	if err != nil {
		return nil, err
	}

	s.log.Info("subproject linked",
		slog.String("parentID", parentID),
		slog.String("childID", childID),
		slog.Bool("created", created),
	)
	return rel, nil
}

// RemoveSubproject unlinks child from parent. Both traversal directions
// stop reflecting the link, since they share one edge.
func (s *Service) RemoveSubproject(ctx context.Context, parentID, childID string) (bool, error) {
	if _, err := s.entities.GetOfKind(ctx, parentID, entities.KindProject); err != nil {
		return false, err
	}
	return s.repo.Delete(ctx, childID, parentID, relationships.TypeSubprojectOf)
}

// GetSubprojects returns the direct children of a project, paginated.
func (s *Service) GetSubprojects(ctx context.Context, parentID string, p pagination.Params) ([]entities.Entity, pagination.Metadata, error) {
	return s.pagedSources(ctx, parentID, relationships.TypeSubprojectOf, p)
}

// GetParent returns the parent project of a child, or not-found when the
// child is a root project.
func (s *Service) GetParent(ctx context.Context, childID string) (*entities.Entity, error) {
	if _, err := s.entities.GetOfKind(ctx, childID, entities.KindProject); err != nil {
		return nil, err
	}

	edges, err := s.repo.GetBySource(ctx, childID, relationships.TypeSubprojectOf)
	if err != nil {
		return nil, err
	}
	if len(edges) == 0 {
		return nil, apperror.ErrNotFound.WithMessage("Project has no parent")
	}

	return s.entities.GetByID(ctx, edges[0].TargetID)
}

// AddTask links a task to a project via BELONGS_TO.
func (s *Service) AddTask(ctx context.Context, projectID, taskID string) (*relationships.Relationship, error) {
	if err := s.checkPair(ctx, relationships.TypeBelongsTo, taskID, projectID); err != nil {
		return nil, err
	}

	props := map[string]any{
		"added_at": time.Now().UTC().Format(time.RFC3339),
	}
	rel, _, err := s.repo.Upsert(ctx, taskID, projectID, relationships.TypeBelongsTo, props)
	return rel, err
}

// RemoveTask unlinks a task from a project.
func (s *Service) RemoveTask(ctx context.Context, projectID, taskID string) (bool, error) {
	if _, err := s.entities.GetOfKind(ctx, projectID, entities.KindProject); err != nil {
		return false, err
	}
	return s.repo.Delete(ctx, taskID, projectID, relationships.TypeBelongsTo)
}

// GetProjectTasks returns the tasks belonging to a project, paginated.
func (s *Service) GetProjectTasks(ctx context.Context, projectID string, p pagination.Params) ([]entities.Entity, pagination.Metadata, error) {
	return s.pagedSources(ctx, projectID, relationships.TypeBelongsTo, p)
}

// pagedSources materializes the source entities of all edges of relType
// arriving at targetID, then slices one page. Pagination happens over the
// materialized edge list; acceptable while per-project cardinality stays in
// the tens-to-hundreds range.
func (s *Service) pagedSources(ctx context.Context, targetID, relType string, p pagination.Params) ([]entities.Entity, pagination.Metadata, error) {
	_, targetKind, _ := relationships.Pairing(relType)
	if _, err := s.entities.GetOfKind(ctx, targetID, targetKind); err != nil {
		return nil, pagination.Metadata{}, err
	}

	edges, err := s.repo.GetByTarget(ctx, targetID, relType)
	if err != nil {
		return nil, pagination.Metadata{}, err
	}

	pageEdges, meta := pagination.Page(edges, p)

	ids := make([]string, len(pageEdges))
	for i, e := range pageEdges {
		ids[i] = e.SourceID
	}
	items, err := s.entities.GetMany(ctx, ids)
	if err != nil {
		return nil, pagination.Metadata{}, err
	}

	return items, meta, nil
}

// joinedSources returns every source entity of relType edges at targetID,
// paired with its edge, unpaginated.
func (s *Service) joinedSources(ctx context.Context, targetID, relType string) ([]EntityWithRelationship, error) {
	_, targetKind, _ := relationships.Pairing(relType)
	if _, err := s.entities.GetOfKind(ctx, targetID, targetKind); err != nil {
		return nil, err
	}

	edges, err := s.repo.GetByTarget(ctx, targetID, relType)
	if err != nil {
		return nil, err
	}

	ids := make([]string, len(edges))
	for i, e := range edges {
		ids[i] = e.SourceID
	}
	rows, err := s.entities.GetMany(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]entities.Entity, len(rows))
	for _, e := range rows {
		byID[e.ID] = e
	}

	joined := make([]EntityWithRelationship, 0, len(edges))
	for _, edge := range edges {
		entity, ok := byID[edge.SourceID]
		if !ok {
			continue
		}
		joined = append(joined, EntityWithRelationship{Entity: entity, Relationship: edge})
	}
	return joined, nil
}
