package projectrel

import (
	"github.com/orgmesh/orgkb/domain/entities"
	"github.com/orgmesh/orgkb/domain/relationships"
	"github.com/orgmesh/orgkb/pkg/pagination"
)

// AssignResourceRequest is the request body for assigning a resource to a
// project. assigned_at is always server-set; callers cannot backdate it.
type AssignResourceRequest struct {
	AllocationPercentage *float64 `json:"allocation_percentage,omitempty"`
	AssignmentType       string   `json:"assignment_type,omitempty"`
	AssignmentStatus     string   `json:"assignment_status,omitempty"`
	ExpectedEndDate      *string  `json:"expected_end_date,omitempty"`
	Notes                *string  `json:"notes,omitempty"`
	AssignedBy           *string  `json:"assigned_by,omitempty"`
}

// AssignManagerRequest is the request body for appointing an agent as a
// project manager. Role and responsibility level take defaults when blank.
type AssignManagerRequest struct {
	Role                string  `json:"role,omitempty"`
	ResponsibilityLevel string  `json:"responsibility_level,omitempty"`
	AppointedAt         *string `json:"appointed_at,omitempty"`
	Notes               *string `json:"notes,omitempty"`
}

// EntityWithRelationship pairs a joined entity with the edge that links it
// to the project, for callers needing full relationship property visibility.
type EntityWithRelationship struct {
	Entity       entities.Entity            `json:"entity"`
	Relationship relationships.Relationship `json:"relationship"`
}

// ListResponse is the envelope for paginated entity lists
type ListResponse struct {
	Items      []entities.Entity   `json:"items"`
	Pagination pagination.Metadata `json:"pagination"`
}

// JoinResponse is the envelope for unpaginated entity+relationship joins
type JoinResponse struct {
	Items []EntityWithRelationship `json:"items"`
}
