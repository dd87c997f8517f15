package main

import (
	"context"
	"log"

	"pivot_bot/internal/modules/api"
	"pivot_bot/internal/modules/backtest"
	"pivot_bot/internal/modules/config"
	"pivot_bot/internal/modules/health"
	"pivot_bot/internal/modules/instruments"
	"pivot_bot/internal/modules/postgres"
	"pivot_bot/internal/modules/strategy"
	"pivot_bot/internal/modules/upstox"
	"pivot_bot/pkg/logger"
	"pivot_bot/pkg/tracing"

	"go.uber.org/fx"
)

const serviceName = "pivot_bot"

func setupObservability(lc fx.Lifecycle, cfg *config.Config) error {
	if err := logger.Init(cfg.LogLevel); err != nil {
		return err
	}
	logger.SetServiceName(serviceName)
	tracing.SetServiceName(serviceName)

	closeTracer := func() {}
	if cfg.Tracing.Enabled() {
		_, closer, err := tracing.InitTracer(cfg.Tracing)
		if err != nil {
			return err
		}
		closeTracer = closer
	}

	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			closeTracer()
			logger.Sync()
			return nil
		},
	})
	logger.Info("starting %s env=%s", serviceName, cfg.Env)
	return nil
}

func main() {
	app := fx.New(
		fx.Provide(
			func() context.Context {
				return context.Background()
			},
		),
		config.Module(),
		fx.Module("observability", fx.Invoke(setupObservability)),
		postgres.Module(),
		instruments.Module(),
		strategy.Module(),
		upstox.Module(),
		backtest.Module(),
		health.Module(),
		api.Module(),
	)
	if err := app.Err(); err != nil {
		log.Fatal(err)
	}
	app.Run()
}
