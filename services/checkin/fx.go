package checkin

import "go.uber.org/fx"

var Module = fx.Module("checkin.service",
	fx.Provide(NewService),
)

var Api = fx.Module("checkin.api",
	fx.Provide(NewHandler),
	fx.Invoke(RegisterRoutes),
)
