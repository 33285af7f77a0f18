package main

import (
	"log"

	"github.com/bwmarrin/snowflake"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"swarmrewards/pkg/config"
	"swarmrewards/pkg/db"
	"swarmrewards/pkg/health"
	"swarmrewards/pkg/logger"
	"swarmrewards/pkg/redis"
	"swarmrewards/pkg/sequence"
	"swarmrewards/pkg/server"
	pkgtask "swarmrewards/pkg/task"
	"swarmrewards/services/account"
	"swarmrewards/services/checkin"
	"swarmrewards/services/device"
	"swarmrewards/services/earning"
	"swarmrewards/services/referral"
	"swarmrewards/services/stats"
	"swarmrewards/services/subscription"
	"swarmrewards/services/task"
)

func main() {
	opts := []fx.Option{
		config.Module,
		logger.Module,
		db.Module,
		redis.Module,
		sequence.Module,
		pkgtask.Client,
		fx.Provide(
			provideTracerProvider,
			provideMeterProvider,
			provideSnowflakeNode,
		),
		fx.Invoke(
			registerTelemetry,
			migrate,
		),
		server.Module,
		health.Module,
		account.Module,
		account.Api,
		earning.Module,
		earning.Api,
		referral.Module,
		referral.Api,
		checkin.Module,
		checkin.Api,
		task.Module,
		task.Api,
		device.Module,
		device.Api,
		subscription.Module,
		subscription.Api,
		stats.Module,
		stats.Api,
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

func provideTracerProvider() trace.TracerProvider {
	return otel.GetTracerProvider()
}

func provideMeterProvider() metric.MeterProvider {
	return otel.GetMeterProvider()
}

func provideSnowflakeNode() (*snowflake.Node, error) {
	return snowflake.NewNode(1)
}

func registerTelemetry(gdb *gorm.DB, cfg *config.Config) error {
	if err := db.Otel(gdb); err != nil {
		return err
	}
	return db.Metric(gdb, cfg.Database.DBNAME)
}

func migrate(gdb *gorm.DB) error {
	return gdb.AutoMigrate(
		&account.Account{},
		&earning.EarningRecord{},
		&earning.LedgerTotal{},
		&referral.ReferralEdge{},
		&checkin.CheckinRecord{},
		&device.Device{},
		&stats.GlobalStat{},
	)
}
