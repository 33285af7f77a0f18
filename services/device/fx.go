package device

import "go.uber.org/fx"

var Module = fx.Module("device.service",
	fx.Provide(NewService),
)

var Api = fx.Module("device.api",
	fx.Provide(NewHandler),
	fx.Invoke(RegisterRoutes),
)

// Worker mounts the daily reset handler and its scheduler.
var Worker = fx.Module("device.worker",
	fx.Provide(NewScheduler),
	fx.Invoke(
		RegisterWorker,
		StartScheduler,
	),
)
