package task

import "go.uber.org/fx"

var Module = fx.Module("task.service",
	fx.Provide(NewService),
)

var Api = fx.Module("task.api",
	fx.Provide(NewHandler),
	fx.Invoke(RegisterRoutes),
)
