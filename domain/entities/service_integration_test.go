package entities_test

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
)

func setupEntityService(t *testing.T) *entities.Service {
	t.Helper()

	testDB, err := testutil.SetupTestDB(context.Background(), "entities")
	if err != nil {
		t.Skipf("database unavailable: %v", err)
	}
	t.Cleanup(testDB.Close)

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelWarn}))
	entRepo := entities.NewRepository(testDB.DB, log)
	relRepo := relationships.NewRepository(testDB.DB, log)
	return entities.NewService(entRepo, relRepo, log)
}

func TestUpdateMergesAttributes(t *testing.T) {
	svc := setupEntityService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, entities.CreateEntityRequest{
		Kind: entities.KindProject,
		Attributes: map[string]any{
			"name":   "Apollo",
			"status": "active",
			"owner":  "ops",
		},
	})
	require.NoError(t, err)

	// Overwrite one key, delete another, leave the rest alone
	updated, err := svc.Update(ctx, created.ID, entities.UpdateEntityRequest{
		Attributes: map[string]any{
			"status": "archived",
			"owner":  nil,
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "archived", updated.Attributes["status"])
	assert.Equal(t, "Apollo", updated.Attributes["name"])
	assert.NotContains(t, updated.Attributes, "owner")

	// Merge persists; a fresh read sees the same attribute map
	got, err := svc.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, updated.Attributes, got.Attributes)
}

func TestUpdateMissingEntity(t *testing.T) {
	svc := setupEntityService(t)

	_, err := svc.Update(context.Background(), "a3bb189e-8bf9-3888-9912-ace4e6543002", entities.UpdateEntityRequest{
		Attributes: map[string]any{"status": "active"},
	})

	var appErr *apperror.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 404, appErr.HTTPStatus)
}

func TestUpdateRejectsMalformedID(t *testing.T) {
	svc := setupEntityService(t)

	_, err := svc.Update(context.Background(), "not-a-uuid", entities.UpdateEntityRequest{
		Attributes: map[string]any{"status": "active"},
	})

	var appErr *apperror.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 400, appErr.HTTPStatus)
}
