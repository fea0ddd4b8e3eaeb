package relationships

import (
	"go.uber.org/fx"

	"github.com/orgmesh/orgkb/domain/entities"
)

// Module provides the relationships domain. It also satisfies the entity
// store's EdgeCascader so entity deletion cascades edge removal.
var Module = fx.Module("relationships",
	fx.Provide(NewRepository),
	fx.Provide(NewService),
	fx.Provide(NewHandler),
	fx.Provide(func(r *Repository) entities.EdgeCascader { return r }),
	fx.Invoke(RegisterRoutes),
)
