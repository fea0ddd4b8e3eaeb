package projectrel

import (
	"go.uber.org/fx"
)

// Module provides the project relationship domain
var Module = fx.Module("projectrel",
	fx.Provide(NewService),
	fx.Provide(NewHandler),
	fx.Invoke(RegisterRoutes),
)
