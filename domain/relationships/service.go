package relationships

import (
	"context"
	"log/slog"

	"github.com/orgmesh/orgkb/domain/entities"
	"github.com/orgmesh/orgkb/pkg/apperror"
	"github.com/orgmesh/orgkb/pkg/logger"
	"github.com/orgmesh/orgkb/pkg/tracing"
)

// Service handles queries over the relationship graph
type Service struct {
	repo     *Repository
	entities *entities.Repository
	log      *slog.Logger
}

// NewService creates a new relationship service
func NewService(repo *Repository, entityRepo *entities.Repository, log *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		entities: entityRepo,
		log:      log.With(logger.Scope("relationships.svc")),
	}
}

// ListFilter selects edges by endpoint and/or type. At least one of
// SourceID and TargetID must be set.
type ListFilter struct {
	SourceID string
	TargetID string
	Type     string
}

// List returns the edges matching the filter, in insertion order.
func (s *Service) List(ctx context.Context, f ListFilter) ([]Relationship, error) {
	if f.Type != "" && !IsValidType(f.Type) {
		return nil, apperror.NewValidation("unknown relationship type: " + f.Type)
	}

	switch {
	case f.SourceID != "" && f.TargetID != "":
		if f.Type == "" {
			// No type given, so the pair can match one edge per type
			edges, err := s.repo.GetBySource(ctx, f.SourceID, "")
			if err != nil {
				return nil, err
			}
			matched := []Relationship{}
			for _, e := range edges {
				if e.TargetID == f.TargetID {
					matched = append(matched, e)
				}
			}
			return matched, nil
		}
		rel, err := s.repo.Get(ctx, f.SourceID, f.TargetID, f.Type)
		if err != nil {
			return nil, err
		}
		if rel == nil {
			return []Relationship{}, nil
		}
		return []Relationship{*rel}, nil
	case f.SourceID != "":
		return s.repo.GetBySource(ctx, f.SourceID, f.Type)
	case f.TargetID != "":
		return s.repo.GetByTarget(ctx, f.TargetID, f.Type)
	default:
		return nil, apperror.NewBadRequest("source_id or target_id is required")
	}
}

// Neighbor pairs an adjacent entity with the edge connecting it.
type Neighbor struct {
	Entity       entities.Entity `json:"entity"`
	Relationship Relationship    `json:"relationship"`
}

// Traversal directions for Neighbors.
const (
	DirectionOut  = "out"  // edges where the entity is the source
	DirectionIn   = "in"   // edges where the entity is the target
	DirectionBoth = "both" // union of the two
)

// Neighbors returns the relationship-bearing neighbors of an entity in the
// requested direction, each with the connecting edge. The root entity must
// exist; neighbors deleted mid-traversal are skipped rather than erroring
// so traversal composes.
func (s *Service) Neighbors(ctx context.Context, entityID, direction, relType string) ([]Neighbor, error) {
	ctx, span := tracing.Start(ctx, "relationships.neighbors")
	defer span.End()

	if direction == "" {
		direction = DirectionBoth
	}
	if direction != DirectionOut && direction != DirectionIn && direction != DirectionBoth {
		return nil, apperror.NewValidation("direction must be one of out, in, both")
	}
	if relType != "" && !IsValidType(relType) {
		return nil, apperror.NewValidation("unknown relationship type: " + relType)
	}

	exists, err := s.entities.Exists(ctx, entityID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, apperror.NewNotFound("entity", entityID)
	}

	var edges []Relationship
	if direction == DirectionOut || direction == DirectionBoth {
		out, err := s.repo.GetBySource(ctx, entityID, relType)
		if err != nil {
			return nil, err
		}
		edges = append(edges, out...)
	}
	if direction == DirectionIn || direction == DirectionBoth {
		in, err := s.repo.GetByTarget(ctx, entityID, relType)
		if err != nil {
			return nil, err
		}
		edges = append(edges, in...)
	}

	if len(edges) == 0 {
		return []Neighbor{}, nil
	}

	neighborIDs := make([]string, 0, len(edges))
	for _, e := range edges {
		other := e.TargetID
		if other == entityID {
			other = e.SourceID
		}
		neighborIDs = append(neighborIDs, other)
	}

	rows, err := s.entities.GetMany(ctx, neighborIDs)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]entities.Entity, len(rows))
	for _, e := range rows {
		byID[e.ID] = e
	}

	neighbors := make([]Neighbor, 0, len(edges))
	for _, edge := range edges {
		other := edge.TargetID
		if other == entityID {
			other = edge.SourceID
		}
		entity, ok := byID[other]
		if !ok {
			// Edge endpoints are deleted in the same transaction as the
			// entity, so a miss here means a concurrent delete; skip it.
			s.log.Warn("edge references missing entity",
				slog.String("edgeID", edge.ID),
				slog.String("entityID", other),
			)
			continue
		}
		neighbors = append(neighbors, Neighbor{Entity: entity, Relationship: edge})
	}

	return neighbors, nil
}
