package entities

import (
	"time"

	"github.com/uptrace/bun"
)

// Entity represents a node in the kb.entities table.
// All business objects (projects, tasks, resources, agents, wins,
// recognitions, tensions) share this storage shape; kind-specific fields
// live in the attributes jsonb map.
type Entity struct {
	bun.BaseModel `bun:"table:kb.entities,alias:e"`

	ID         string         `bun:"id,pk,type:uuid,default:gen_random_uuid()" json:"id"`
	Kind       string         `bun:"kind,notnull" json:"kind"`
	Attributes map[string]any `bun:"attributes,type:jsonb,default:'{}'" json:"attributes"`
	CreatedAt  time.Time      `bun:"created_at,notnull,default:now()" json:"createdAt"`
	UpdatedAt  time.Time      `bun:"updated_at,notnull,default:now()" json:"updatedAt"`
}

// Entity kind constants
const (
	KindProject     = "project"
	KindTask        = "task"
	KindResource    = "resource"
	KindAgent       = "agent"
	KindWIN         = "win"
	KindRecognition = "recognition"
	KindTension     = "tension"
)

var validKinds = map[string]bool{
	KindProject:     true,
	KindTask:        true,
	KindResource:    true,
	KindAgent:       true,
	KindWIN:         true,
	KindRecognition: true,
	KindTension:     true,
}

// IsValidKind reports whether kind is one of the supported entity kinds.
func IsValidKind(kind string) bool {
	return validKinds[kind]
}

// CreateEntityRequest is the request body for creating an entity
type CreateEntityRequest struct {
	Kind       string         `json:"kind" validate:"required"`
	Attributes map[string]any `json:"attributes,omitempty"`
}

// UpdateEntityRequest is the request body for partially updating an entity.
// Only the supplied attribute keys change; absent keys are preserved.
type UpdateEntityRequest struct {
	Attributes map[string]any `json:"attributes" validate:"required"`
}

// DeleteEntityResponse reports the outcome of a cascade delete
type DeleteEntityResponse struct {
	Deleted      bool `json:"deleted"`
	EdgesRemoved int  `json:"edgesRemoved"`
}
