package relationships

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/uptrace/bun"

	"github.com/orgmesh/orgkb/internal/database"
	"github.com/orgmesh/orgkb/pkg/apperror"
	"github.com/orgmesh/orgkb/pkg/logger"
	"github.com/orgmesh/orgkb/pkg/metrics"
	"github.com/orgmesh/orgkb/pkg/pgutils"
)

// Repository handles database operations for relationships.
//
// Writes to a single (source, target, type) triple are serialized with a
// transaction-scoped advisory lock, so the read-merge-write upsert path
// cannot lose updates under concurrency.
type Repository struct {
	db  bun.IDB
	log *slog.Logger
}

// NewRepository creates a new relationship repository
func NewRepository(db bun.IDB, log *slog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With(logger.Scope("relationships.repo")),
	}
}

// AcquireEdgeLock acquires an advisory lock for a relationship triple.
// The lock is held until the surrounding transaction ends.
func (r *Repository) AcquireEdgeLock(ctx context.Context, tx bun.Tx, sourceID, targetID, relType string) error {
	lockKey := "rel|" + sourceID + "|" + targetID + "|" + relType
	_, err := tx.ExecContext(ctx, "SELECT pg_advisory_xact_lock(hashtext(?)::bigint)", lockKey)
	if err != nil {
		return database.WrapError(err)
	}
	return nil
}

// getForUpdate loads the edge for a triple inside tx with a row lock.
// Returns nil when the edge does not exist.
func (r *Repository) getForUpdate(ctx context.Context, tx bun.Tx, sourceID, targetID, relType string) (*Relationship, error) {
	var rel Relationship
	err := tx.NewSelect().
		Model(&rel).
		Where("source_id = ?", sourceID).
		Where("target_id = ?", targetID).
		Where("type = ?", relType).
		For("UPDATE").
		Scan(ctx)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		r.log.Error("failed to get relationship for update", logger.Error(err))
		return nil, database.WrapError(err)
	}
	return &rel, nil
}

// Upsert creates the edge for a triple or merges properties into the
// existing one. Returns the resulting edge and whether it was created.
func (r *Repository) Upsert(ctx context.Context, sourceID, targetID, relType string, properties map[string]any) (*Relationship, bool, error) {
	tx, err := database.BeginSafeTx(ctx, r.db)
	if err != nil {
		return nil, false, database.WrapError(err)
	}
	defer tx.Rollback()

	if err := r.AcquireEdgeLock(ctx, tx.Tx, sourceID, targetID, relType); err != nil {
		return nil, false, err
	}

	existing, err := r.getForUpdate(ctx, tx.Tx, sourceID, targetID, relType)
	if err != nil {
		return nil, false, err
	}

	if existing != nil {
		merged := MergeProperties(existing.Properties, properties)
		updated, err := r.updateProperties(ctx, tx.Tx, existing.ID, merged)
		if err != nil {
			return nil, false, err
		}
		if err := tx.Commit(); err != nil {
			return nil, false, database.WrapError(err)
		}
		metrics.RelationshipsTotal.WithLabelValues(relType, "merge").Inc()
		return updated, false, nil
	}

	rel := &Relationship{
		SourceID:   sourceID,
		TargetID:   targetID,
		Type:       relType,
		Properties: properties,
	}
	if rel.Properties == nil {
		rel.Properties = map[string]any{}
	}

	_, err = tx.NewInsert().
		Model(rel).
		Returning("id, source_id, target_id, type, properties, created_at, updated_at").
		Exec(ctx)
	if err != nil {
		// FK violation means an endpoint was deleted between the existence
		// check and the insert
		if pgutils.IsForeignKeyViolation(err) {
			return nil, false, apperror.ErrNotFound.WithMessage("Source or target entity no longer exists").WithInternal(err)
		}
		r.log.Error("failed to insert relationship", logger.Error(err),
			slog.String("type", relType),
		)
		return nil, false, database.WrapError(err)
	}

	if err := tx.Commit(); err != nil {
		return nil, false, database.WrapError(err)
	}

	metrics.RelationshipsTotal.WithLabelValues(relType, "create").Inc()
	return rel, true, nil
}

// MergeExisting merges properties into an existing edge. Returns nil when
// the edge does not exist, so callers can map that to not-found.
func (r *Repository) MergeExisting(ctx context.Context, sourceID, targetID, relType string, properties map[string]any) (*Relationship, error) {
	tx, err := database.BeginSafeTx(ctx, r.db)
	if err != nil {
		return nil, database.WrapError(err)
	}
	defer tx.Rollback()

	if err := r.AcquireEdgeLock(ctx, tx.Tx, sourceID, targetID, relType); err != nil {
		return nil, err
	}

	existing, err := r.getForUpdate(ctx, tx.Tx, sourceID, targetID, relType)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, nil
	}

	merged := MergeProperties(existing.Properties, properties)
	updated, err := r.updateProperties(ctx, tx.Tx, existing.ID, merged)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, database.WrapError(err)
	}

	metrics.RelationshipsTotal.WithLabelValues(relType, "merge").Inc()
	return updated, nil
}

func (r *Repository) updateProperties(ctx context.Context, tx bun.Tx, id string, properties map[string]any) (*Relationship, error) {
	var rel Relationship
	_, err := tx.NewUpdate().
		Model(&rel).
		Set("properties = ?", properties).
		Set("updated_at = now()").
		Where("id = ?", id).
		Returning("id, source_id, target_id, type, properties, created_at, updated_at").
		Exec(ctx)

	if err != nil {
		r.log.Error("failed to update relationship properties", logger.Error(err), slog.String("id", id))
		return nil, database.WrapError(err)
	}
	return &rel, nil
}

// Get returns the edge for a triple, or nil when missing
func (r *Repository) Get(ctx context.Context, sourceID, targetID, relType string) (*Relationship, error) {
	var rel Relationship
	err := r.db.NewSelect().
		Model(&rel).
		Where("source_id = ?", sourceID).
		Where("target_id = ?", targetID).
		Where("type = ?", relType).
		Scan(ctx)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		r.log.Error("failed to get relationship", logger.Error(err))
		return nil, database.WrapError(err)
	}
	return &rel, nil
}

// GetBySource returns all edges leaving sourceID, in insertion order.
// An empty relType matches every type.
func (r *Repository) GetBySource(ctx context.Context, sourceID, relType string) ([]Relationship, error) {
	var rels []Relationship

	query := r.db.NewSelect().
		Model(&rels).
		Where("source_id = ?", sourceID).
		Order("r.created_at ASC", "r.id ASC")

	if relType != "" {
		query = query.Where("type = ?", relType)
	}

	if err := query.Scan(ctx); err != nil {
		r.log.Error("failed to list relationships by source", logger.Error(err),
			slog.String("sourceID", sourceID))
		return nil, database.WrapError(err)
	}

	if rels == nil {
		rels = []Relationship{}
	}
	return rels, nil
}

// GetByTarget returns all edges arriving at targetID, in insertion order.
// An empty relType matches every type.
func (r *Repository) GetByTarget(ctx context.Context, targetID, relType string) ([]Relationship, error) {
	var rels []Relationship

	query := r.db.NewSelect().
		Model(&rels).
		Where("target_id = ?", targetID).
		Order("r.created_at ASC", "r.id ASC")

	if relType != "" {
		query = query.Where("type = ?", relType)
	}

	if err := query.Scan(ctx); err != nil {
		r.log.Error("failed to list relationships by target", logger.Error(err),
			slog.String("targetID", targetID))
		return nil, database.WrapError(err)
	}

	if rels == nil {
		rels = []Relationship{}
	}
	return rels, nil
}

// Delete removes the edge for a triple. Returns false when no matching
// edge existed, which is not an error.
func (r *Repository) Delete(ctx context.Context, sourceID, targetID, relType string) (bool, error) {
	tx, err := database.BeginSafeTx(ctx, r.db)
	if err != nil {
		return false, database.WrapError(err)
	}
	defer tx.Rollback()

	if err := r.AcquireEdgeLock(ctx, tx.Tx, sourceID, targetID, relType); err != nil {
		return false, err
	}

	result, err := tx.NewDelete().
		Model((*Relationship)(nil)).
		Where("source_id = ?", sourceID).
		Where("target_id = ?", targetID).
		Where("type = ?", relType).
		Exec(ctx)

	if err != nil {
		r.log.Error("failed to delete relationship", logger.Error(err))
		return false, database.WrapError(err)
	}

	if err := tx.Commit(); err != nil {
		return false, database.WrapError(err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected > 0 {
		metrics.RelationshipsTotal.WithLabelValues(relType, "delete").Inc()
	}
	return rowsAffected > 0, nil
}

// DeleteAllForEntity removes every edge where the entity is source or
// target, on any relationship type, inside the caller's transaction.
// Returns the number of edges removed. This is the cascade mechanism that
// keeps entity deletion from leaving dangling edges.
func (r *Repository) DeleteAllForEntity(ctx context.Context, tx bun.Tx, entityID string) (int, error) {
	result, err := tx.NewDelete().
		Model((*Relationship)(nil)).
		Where("source_id = ? OR target_id = ?", entityID, entityID).
		Exec(ctx)

	if err != nil {
		r.log.Error("failed to cascade delete relationships", logger.Error(err),
			slog.String("entityID", entityID))
		return 0, database.WrapError(err)
	}

	rowsAffected, _ := result.RowsAffected()
	return int(rowsAffected), nil
}
