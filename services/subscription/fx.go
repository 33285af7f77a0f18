package subscription

import "go.uber.org/fx"

var Module = fx.Module("subscription.service",
	fx.Provide(NewService),
)

var Api = fx.Module("subscription.api",
	fx.Provide(NewHandler),
	fx.Invoke(RegisterRoutes),
)

// Worker mounts the plan sync handler and its interval scheduler.
var Worker = fx.Module("subscription.worker",
	fx.Provide(NewScheduler),
	fx.Invoke(
		RegisterWorker,
		StartScheduler,
	),
)
