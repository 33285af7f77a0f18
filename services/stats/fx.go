package stats

import "go.uber.org/fx"

var Module = fx.Module("stats.service",
	fx.Provide(NewService),
)

var Api = fx.Module("stats.api",
	fx.Provide(NewHandler),
	fx.Invoke(RegisterRoutes),
)
