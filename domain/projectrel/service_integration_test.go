package projectrel

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orgmesh/orgkb/domain/entities"
	"github.com/orgmesh/orgkb/domain/relationships"
	"github.com/orgmesh/orgkb/internal/testutil"
	"github.com/orgmesh/orgkb/pkg/apperror"
	"github.com/orgmesh/orgkb/pkg/pagination"
)

// setupService provisions an isolated database and the full service stack.
// Skips when no PostgreSQL instance is reachable.
func setupService(t *testing.T) (*Service, *entities.Service) {
	t.Helper()

	testDB, err := testutil.SetupTestDB(context.Background(), "projectrel")
	if err != nil {
		t.Skipf("database unavailable: %v", err)
	}
	t.Cleanup(testDB.Close)

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelWarn}))
	entRepo := entities.NewRepository(testDB.DB, log)
	relRepo := relationships.NewRepository(testDB.DB, log)
	entSvc := entities.NewService(entRepo, relRepo, log)
	return NewService(entSvc, relRepo, log), entSvc
}

func mustCreate(t *testing.T, svc *entities.Service, kind string, attrs map[string]any) *entities.Entity {
	t.Helper()
	e, err := svc.Create(context.Background(), entities.CreateEntityRequest{Kind: kind, Attributes: attrs})
	require.NoError(t, err)
	return e
}

func TestSubprojectLinkVisibleFromBothSides(t *testing.T) {
	svc, entSvc := setupService(t)
	ctx := context.Background()

	parent := mustCreate(t, entSvc, entities.KindProject, map[string]any{"name": "Platform"})
	child := mustCreate(t, entSvc, entities.KindProject, map[string]any{"name": "Billing"})

	_, err := svc.AddSubproject(ctx, parent.ID, child.ID)
	require.NoError(t, err)

	// Parent view: child listed as subproject
	subs, meta, err := svc.GetSubprojects(ctx, parent.ID, pagination.Params{Page: 1, PageSize: 10})
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, child.ID, subs[0].ID)
	assert.Equal(t, 1, meta.Total)

	// Child view: parent resolves
	got, err := svc.GetParent(ctx, child.ID)
	require.NoError(t, err)
	assert.Equal(t, parent.ID, got.ID)

	// Removal clears both views at once
	removed, err := svc.RemoveSubproject(ctx, parent.ID, child.ID)
	require.NoError(t, err)
	assert.True(t, removed)

	subs, meta, err = svc.GetSubprojects(ctx, parent.ID, pagination.Params{Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Empty(t, subs)
	assert.Equal(t, 0, meta.Total)

	_, err = svc.GetParent(ctx, child.ID)
	var appErr *apperror.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 404, appErr.HTTPStatus)
}

func TestTwoManagersOnOneProject(t *testing.T) {
	svc, entSvc := setupService(t)
	ctx := context.Background()

	project := mustCreate(t, entSvc, entities.KindProject, map[string]any{"name": "Apollo"})
	lead := mustCreate(t, entSvc, entities.KindAgent, map[string]any{"name": "Ada"})
	sponsor := mustCreate(t, entSvc, entities.KindAgent, map[string]any{"name": "Grace"})

	_, err := svc.AssignManager(ctx, project.ID, lead.ID, AssignManagerRequest{Role: "tech_lead"})
	require.NoError(t, err)
	_, err = svc.AssignManager(ctx, project.ID, sponsor.ID, AssignManagerRequest{Role: "sponsor", ResponsibilityLevel: "secondary"})
	require.NoError(t, err)

	joined, err := svc.GetProjectManagersWithRelationships(ctx, project.ID)
	require.NoError(t, err)
	require.Len(t, joined, 2)

	rolesByAgent := map[string]any{}
	for _, j := range joined {
		rolesByAgent[j.Entity.ID] = j.Relationship.Properties["role"]
	}
	assert.Equal(t, "tech_lead", rolesByAgent[lead.ID])
	assert.Equal(t, "sponsor", rolesByAgent[sponsor.ID])

	// Removing one manager leaves the other untouched
	removed, err := svc.RemoveManager(ctx, project.ID, lead.ID)
	require.NoError(t, err)
	assert.True(t, removed)

	remaining, _, err := svc.GetProjectManagers(ctx, project.ID, pagination.Params{Page: 1, PageSize: 10})
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, sponsor.ID, remaining[0].ID)
}

func TestResourceAssignmentMergeRetainsProperties(t *testing.T) {
	svc, entSvc := setupService(t)
	ctx := context.Background()

	project := mustCreate(t, entSvc, entities.KindProject, map[string]any{"name": "Apollo"})
	resource := mustCreate(t, entSvc, entities.KindResource, map[string]any{"name": "Ada"})

	alloc := 50.0
	assignedBy := "ops"
	rel, err := svc.AssignResource(ctx, project.ID, resource.ID, AssignResourceRequest{
		AllocationPercentage: &alloc,
		AssignmentType:       "full_time",
		AssignedBy:           &assignedBy,
	})
	require.NoError(t, err)
	assignedAt := rel.Properties["assigned_at"]
	require.NotEmpty(t, assignedAt)
	assert.Equal(t, "active", rel.Properties["assignment_status"])

	// Updating only the allocation keeps the other keys and the server-set
	// assignment timestamp
	updated, err := svc.UpdateResourceRelationship(ctx, project.ID, resource.ID, map[string]any{
		"allocation_percentage": 75.0,
		"assigned_at":           "1999-01-01T00:00:00Z",
	})
	require.NoError(t, err)
	assert.Equal(t, 75.0, updated.Properties["allocation_percentage"])
	assert.Equal(t, "full_time", updated.Properties["assignment_type"])
	assert.Equal(t, "ops", updated.Properties["assigned_by"])
	assert.Equal(t, assignedAt, updated.Properties["assigned_at"])
}

func TestUpdateUnassignedResourceNotFound(t *testing.T) {
	svc, entSvc := setupService(t)
	ctx := context.Background()

	project := mustCreate(t, entSvc, entities.KindProject, nil)
	resource := mustCreate(t, entSvc, entities.KindResource, nil)

	_, err := svc.UpdateResourceRelationship(ctx, project.ID, resource.ID, map[string]any{"notes": "hi"})
	var appErr *apperror.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 404, appErr.HTTPStatus)
}
