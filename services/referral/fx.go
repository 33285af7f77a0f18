package referral

import "go.uber.org/fx"

var Module = fx.Module("referral.service",
	fx.Provide(NewService),
)

// Api mounts the HTTP surface. Only the API binary includes this.
var Api = fx.Module("referral.api",
	fx.Provide(NewHandler),
	fx.Invoke(RegisterRoutes),
)

// Worker registers the royalty cascade handler on the asynq mux. Only the
// worker binary mounts this.
var Worker = fx.Module("referral.worker",
	fx.Invoke(RegisterWorker),
)
