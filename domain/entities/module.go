package entities

import (
	"go.uber.org/fx"
)

// Module provides the entities domain.
// The EdgeCascader dependency is provided by the relationships module.
var Module = fx.Module("entities",
	fx.Provide(NewRepository),
	fx.Provide(NewService),
	fx.Provide(NewHandler),
	fx.Invoke(RegisterRoutes),
)
