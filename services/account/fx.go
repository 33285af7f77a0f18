package account

import "go.uber.org/fx"

var Module = fx.Module("account.service",
	fx.Provide(NewService),
)

var Api = fx.Module("account.api",
	fx.Provide(NewHandler),
	fx.Invoke(RegisterRoutes),
)
