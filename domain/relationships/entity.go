package relationships

import (
	"time"

	"github.com/uptrace/bun"

	"github.com/orgmesh/orgkb/domain/entities"
	"github.com/orgmesh/orgkb/pkg/apperror"
)

// Relationship represents a directed, typed, attributed edge in the
// kb.relationships table. At most one row exists per
// (source_id, target_id, type) triple; re-assignment merges properties.
type Relationship struct {
	bun.BaseModel `bun:"table:kb.relationships,alias:r"`

	ID         string         `bun:"id,pk,type:uuid,default:gen_random_uuid()" json:"id"`
	SourceID   string         `bun:"source_id,notnull,type:uuid" json:"sourceId"`
	TargetID   string         `bun:"target_id,notnull,type:uuid" json:"targetId"`
	Type       string         `bun:"type,notnull" json:"type"`
	Properties map[string]any `bun:"properties,type:jsonb,default:'{}'" json:"properties"`
	CreatedAt  time.Time      `bun:"created_at,notnull,default:now()" json:"createdAt"`
	UpdatedAt  time.Time      `bun:"updated_at,notnull,default:now()" json:"updatedAt"`
}

// Relationship type constants
const (
	TypeAssignedToProject = "ASSIGNED_TO_PROJECT" // resource -> project
	TypeManagesProject    = "MANAGES_PROJECT"     // agent -> project
	TypeBelongsTo         = "BELONGS_TO"          // task -> project
	TypeSubprojectOf      = "SUBPROJECT_OF"       // child project -> parent project
)

// pairing pins each relationship type to its source and target entity kinds.
type pairing struct {
	SourceKind string
	TargetKind string
}

var pairings = map[string]pairing{
	TypeAssignedToProject: {SourceKind: entities.KindResource, TargetKind: entities.KindProject},
	TypeManagesProject:    {SourceKind: entities.KindAgent, TargetKind: entities.KindProject},
	TypeBelongsTo:         {SourceKind: entities.KindTask, TargetKind: entities.KindProject},
	TypeSubprojectOf:      {SourceKind: entities.KindProject, TargetKind: entities.KindProject},
}

// IsValidType reports whether relType is a supported relationship type.
func IsValidType(relType string) bool {
	_, ok := pairings[relType]
	return ok
}

// Pairing returns the entity kinds a relationship type connects.
func Pairing(relType string) (sourceKind, targetKind string, ok bool) {
	p, found := pairings[relType]
	return p.SourceKind, p.TargetKind, found
}

// ValidatePairing checks that the endpoint kinds match the closed pairing
// set for the relationship type.
func ValidatePairing(relType, sourceKind, targetKind string) error {
	p, ok := pairings[relType]
	if !ok {
		return apperror.NewValidation("unknown relationship type: " + relType)
	}
	if sourceKind != p.SourceKind || targetKind != p.TargetKind {
		return apperror.NewValidation(
			relType + " connects " + p.SourceKind + " to " + p.TargetKind +
				", got " + sourceKind + " to " + targetKind)
	}
	return nil
}

// MergeProperties overlays update onto base without mutating either map.
// Keys present in update overwrite, keys absent are preserved, and a key
// with an explicit nil value is removed.
func MergeProperties(base, update map[string]any) map[string]any {
	merged := make(map[string]any, len(base)+len(update))
	for k, v := range base {
		merged[k] = v
	}
	for k, v := range update {
		if v == nil {
			delete(merged, k)
			continue
		}
		merged[k] = v
	}
	return merged
}
