package earning

import "go.uber.org/fx"

var Module = fx.Module("earning.service",
	fx.Provide(NewService),
)

// Api mounts the HTTP surface. Only the API binary includes this.
var Api = fx.Module("earning.api",
	fx.Provide(NewHandler),
	fx.Invoke(RegisterRoutes),
)
