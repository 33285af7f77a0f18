package main

import (
	"log"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"swarmrewards/pkg/config"
	"swarmrewards/pkg/db"
	"swarmrewards/pkg/logger"
	"swarmrewards/pkg/redis"
	"swarmrewards/pkg/sequence"
	pkgtask "swarmrewards/pkg/task"
	"swarmrewards/services/account"
	"swarmrewards/services/device"
	"swarmrewards/services/earning"
	"swarmrewards/services/referral"
	"swarmrewards/services/stats"
	"swarmrewards/services/subscription"
)

func main() {
	opts := []fx.Option{
		config.Module,
		logger.Module,
		db.Module,
		redis.Module,
		sequence.Module,
		pkgtask.Client,
		pkgtask.Server,
		fx.Provide(provideSnowflakeNode),
		account.Module,
		earning.Module,
		stats.Module,
		referral.Module,
		referral.Worker,
		device.Module,
		device.Worker,
		subscription.Module,
		subscription.Worker,
		fxLogger,
	}

	if err := fx.ValidateApp(opts...); err != nil {
		log.Fatalf("fx validation failed: %v", err)
	}

	app := fx.New(opts...)

	app.Run()
}

var fxLogger = fx.WithLogger(func(cfg *config.Config, logger *zap.Logger) fxevent.Logger {
	return fxevent.NopLogger
})

func provideSnowflakeNode() (*snowflake.Node, error) {
	return snowflake.NewNode(1)
}
