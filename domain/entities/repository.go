package entities

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/uptrace/bun"

	"github.com/orgmesh/orgkb/internal/database"
	"github.com/orgmesh/orgkb/pkg/logger"
)

// Repository handles database operations for entities
type Repository struct {
	db  bun.IDB
	log *slog.Logger
}

// NewRepository creates a new entity repository
func NewRepository(db bun.IDB, log *slog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With(logger.Scope("entities.repo")),
	}
}

// Create inserts a new entity
func (r *Repository) Create(ctx context.Context, entity *Entity) error {
	if entity.Attributes == nil {
		entity.Attributes = map[string]any{}
	}

	_, err := r.db.NewInsert().
		Model(entity).
		Returning("id, kind, attributes, created_at, updated_at").
		Exec(ctx)

	if err != nil {
		r.log.Error("failed to create entity", logger.Error(err), slog.String("kind", entity.Kind))
		return database.WrapError(err)
	}

	return nil
}

// GetByID returns an entity by ID, or nil when missing (service decides the error)
func (r *Repository) GetByID(ctx context.Context, id string) (*Entity, error) {
	var entity Entity

	err := r.db.NewSelect().
		Model(&entity).
		Where("id = ?", id).
		Scan(ctx)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		r.log.Error("failed to get entity", logger.Error(err), slog.String("id", id))
		return nil, database.WrapError(err)
	}

	return &entity, nil
}

// GetMany returns the entities for the given IDs, in the order the IDs were
// supplied. IDs with no matching row are silently skipped.
func (r *Repository) GetMany(ctx context.Context, ids []string) ([]Entity, error) {
	if len(ids) == 0 {
		return []Entity{}, nil
	}

	var rows []Entity
	err := r.db.NewSelect().
		Model(&rows).
		Where("id IN (?)", bun.In(ids)).
		Scan(ctx)

	if err != nil {
		r.log.Error("failed to get entities", logger.Error(err))
		return nil, database.WrapError(err)
	}

	byID := make(map[string]Entity, len(rows))
	for _, e := range rows {
		byID[e.ID] = e
	}

	ordered := make([]Entity, 0, len(rows))
	for _, id := range ids {
		if e, ok := byID[id]; ok {
			ordered = append(ordered, e)
		}
	}
	return ordered, nil
}

// ListParams defines parameters for listing entities
type ListParams struct {
	Kind   string // Optional filter by kind
	Limit  int
	Offset int
}

// List returns a page of entities plus the total count matching the filter
func (r *Repository) List(ctx context.Context, params ListParams) ([]Entity, int, error) {
	var rows []Entity

	query := r.db.NewSelect().
		Model(&rows).
		Order("e.created_at ASC", "e.id ASC")

	if params.Kind != "" {
		query = query.Where("kind = ?", params.Kind)
	}

	total, err := query.Limit(params.Limit).Offset(params.Offset).ScanAndCount(ctx)
	if err != nil {
		r.log.Error("failed to list entities", logger.Error(err))
		return nil, 0, database.WrapError(err)
	}

	return rows, total, nil
}

// Exists reports whether an entity row with the given ID exists
func (r *Repository) Exists(ctx context.Context, id string) (bool, error) {
	exists, err := r.db.NewSelect().
		Model((*Entity)(nil)).
		Where("id = ?", id).
		Exists(ctx)

	if err != nil {
		r.log.Error("failed to check entity existence", logger.Error(err), slog.String("id", id))
		return false, database.WrapError(err)
	}

	return exists, nil
}

// GetForUpdate returns an entity with its row locked for the duration of
// the transaction, or nil when missing. Serializes concurrent attribute
// merges on one entity.
func (r *Repository) GetForUpdate(ctx context.Context, tx bun.Tx, id string) (*Entity, error) {
	var entity Entity

	err := tx.NewSelect().
		Model(&entity).
		Where("id = ?", id).
		For("UPDATE").
		Scan(ctx)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		r.log.Error("failed to lock entity", logger.Error(err), slog.String("id", id))
		return nil, database.WrapError(err)
	}

	return &entity, nil
}

// UpdateAttributes replaces the stored attribute map and bumps updated_at,
// inside the caller's transaction. The merge of old and new keys happens in
// the service, which holds both maps under the row lock.
func (r *Repository) UpdateAttributes(ctx context.Context, tx bun.Tx, id string, attributes map[string]any) (*Entity, error) {
	var entity Entity

	res, err := tx.NewUpdate().
		Model(&entity).
		Set("attributes = ?", attributes).
		Set("updated_at = now()").
		Where("id = ?", id).
		Returning("id, kind, attributes, created_at, updated_at").
		Exec(ctx)

	if err != nil {
		r.log.Error("failed to update entity attributes", logger.Error(err), slog.String("id", id))
		return nil, database.WrapError(err)
	}

	rowsAffected, _ := res.RowsAffected()
	if rowsAffected == 0 {
		return nil, nil
	}

	return &entity, nil
}

// Delete removes an entity row inside the given transaction
func (r *Repository) Delete(ctx context.Context, tx bun.Tx, id string) (bool, error) {
	result, err := tx.NewDelete().
		Model((*Entity)(nil)).
		Where("id = ?", id).
		Exec(ctx)

	if err != nil {
		r.log.Error("failed to delete entity", logger.Error(err), slog.String("id", id))
		return false, database.WrapError(err)
	}

	rowsAffected, _ := result.RowsAffected()
	return rowsAffected > 0, nil
}

// BeginTx starts a new transaction.
// Returns a SafeTx that's safe to call Rollback after Commit.
func (r *Repository) BeginTx(ctx context.Context) (*database.SafeTx, error) {
	tx, err := database.BeginSafeTx(ctx, r.db)
	if err != nil {
		r.log.Error("failed to begin transaction", logger.Error(err))
		return nil, database.WrapError(err)
	}
	return tx, nil
}
