package entities

import (
	"context"
	"log/slog"
	"regexp"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/orgmesh/orgkb/internal/database"
	"github.com/orgmesh/orgkb/pkg/apperror"
	"github.com/orgmesh/orgkb/pkg/logger"
	"github.com/orgmesh/orgkb/pkg/metrics"
	"github.com/orgmesh/orgkb/pkg/pagination"
	"github.com/orgmesh/orgkb/pkg/tracing"
)

var (
	// uuidRegex validates UUID format (36 chars with hyphens)
	uuidRegex = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)
)

func isValidUUID(id string) bool {
	return uuidRegex.MatchString(id)
}

// EdgeCascader removes every relationship touching an entity.
// Implemented by the relationships repository; declared here so entity
// deletion can cascade without a package cycle.
type EdgeCascader interface {
	DeleteAllForEntity(ctx context.Context, tx bun.Tx, entityID string) (int, error)
}

// Service handles business logic for entities
type Service struct {
	repo     *Repository
	cascader EdgeCascader
	log      *slog.Logger
}

// NewService creates a new entity service
func NewService(repo *Repository, cascader EdgeCascader, log *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		cascader: cascader,
		log:      log.With(logger.Scope("entities.svc")),
	}
}

// Create creates a new entity of the given kind
func (s *Service) Create(ctx context.Context, req CreateEntityRequest) (*Entity, error) {
	ctx, span := tracing.Start(ctx, "entities.create")
	defer span.End()

	if !IsValidKind(req.Kind) {
		return nil, apperror.NewValidation("unknown entity kind: " + req.Kind)
	}

	entity := &Entity{
		ID:         uuid.NewString(),
		Kind:       req.Kind,
		Attributes: req.Attributes,
	}
	if err := s.repo.Create(ctx, entity); err != nil {
		return nil, err
	}

	metrics.EntitiesTotal.WithLabelValues(entity.Kind, "create").Inc()
	s.log.Info("entity created",
		slog.String("id", entity.ID),
		slog.String("kind", entity.Kind),
	)
	return entity, nil
}

// GetByID returns an entity by ID
func (s *Service) GetByID(ctx context.Context, id string) (*Entity, error) {
	if !isValidUUID(id) {
		return nil, apperror.NewBadRequest("id must be a valid UUID")
	}

	entity, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if entity == nil {
		return nil, apperror.NewNotFound("entity", id)
	}

	return entity, nil
}

// GetOfKind returns an entity by ID and verifies it has the expected kind.
// A kind mismatch surfaces as a validation error, not a 404, so callers can
// tell "no such row" apart from "wrong kind of row".
func (s *Service) GetOfKind(ctx context.Context, id, kind string) (*Entity, error) {
	entity, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if entity.Kind != kind {
		return nil, apperror.NewValidation("entity " + id + " is a " + entity.Kind + ", expected " + kind)
	}
	return entity, nil
}

// GetMany returns the entities for the given IDs, preserving ID order.
func (s *Service) GetMany(ctx context.Context, ids []string) ([]Entity, error) {
	return s.repo.GetMany(ctx, ids)
}

// List returns a page of entities, optionally filtered by kind
func (s *Service) List(ctx context.Context, kind string, p pagination.Params) ([]Entity, pagination.Metadata, error) {
	if kind != "" && !IsValidKind(kind) {
		return nil, pagination.Metadata{}, apperror.NewValidation("unknown entity kind: " + kind)
	}

	rows, total, err := s.repo.List(ctx, ListParams{
		Kind:   kind,
		Limit:  p.PageSize,
		Offset: p.Offset(),
	})
	if err != nil {
		return nil, pagination.Metadata{}, err
	}

	if rows == nil {
		rows = []Entity{}
	}
	return rows, pagination.NewMetadata(total, p), nil
}

// Update merges the supplied attribute keys into the entity's attributes.
// Keys absent from the request are preserved; a key with an explicit null
// value is removed. The read-merge-write runs with the row locked, so
// concurrent merges on one entity serialize instead of losing keys.
func (s *Service) Update(ctx context.Context, id string, req UpdateEntityRequest) (*Entity, error) {
	ctx, span := tracing.Start(ctx, "entities.update")
	defer span.End()

	if !isValidUUID(id) {
		return nil, apperror.NewBadRequest("id must be a valid UUID")
	}

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	existing, err := s.repo.GetForUpdate(ctx, tx.Tx, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, apperror.NewNotFound("entity", id)
	}

	merged := make(map[string]any, len(existing.Attributes)+len(req.Attributes))
	for k, v := range existing.Attributes {
		merged[k] = v
	}
	for k, v := range req.Attributes {
		if v == nil {
			delete(merged, k)
			continue
		}
		merged[k] = v
	}

	updated, err := s.repo.UpdateAttributes(ctx, tx.Tx, id, merged)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, apperror.NewNotFound("entity", id)
	}

	if err := tx.Commit(); err != nil {
		return nil, database.WrapError(err)
	}

	metrics.EntitiesTotal.WithLabelValues(updated.Kind, "update").Inc()
	return updated, nil
}

// Delete removes an entity and every relationship it participates in,
// in a single transaction. No dangling edges survive.
func (s *Service) Delete(ctx context.Context, id string) (*DeleteEntityResponse, error) {
	ctx, span := tracing.Start(ctx, "entities.delete")
	defer span.End()

	if !isValidUUID(id) {
		return nil, apperror.NewBadRequest("id must be a valid UUID")
	}

	entity, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if entity == nil {
		return nil, apperror.NewNotFound("entity", id)
	}

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	edgesRemoved, err := s.cascader.DeleteAllForEntity(ctx, tx.Tx, id)
	if err != nil {
		return nil, err
	}

	deleted, err := s.repo.Delete(ctx, tx.Tx, id)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, database.WrapError(err)
	}

	metrics.EntitiesTotal.WithLabelValues(entity.Kind, "delete").Inc()
	metrics.CascadeDeletedEdges.Add(float64(edgesRemoved))
	s.log.Info("entity deleted",
		slog.String("id", id),
		slog.String("kind", entity.Kind),
		slog.Int("edges_removed", edgesRemoved),
	)

	return &DeleteEntityResponse{Deleted: deleted, EdgesRemoved: edgesRemoved}, nil
}
